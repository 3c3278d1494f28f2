package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dealdesk/diligence/internal/core/domain"
)

type createFindingRequest struct {
	Text       string           `json:"text"`
	Domain     string           `json:"domain"`
	Confidence float64          `json:"confidence"`
	Source     domain.SourceRef `json:"source"`
}

func (rt *Router) listFindings(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	query := r.URL.Query()

	filter := domain.FindingFilter{
		Status: query.Get("status"),
		Domain: query.Get("domain"),
	}
	if raw := query.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Limit = n
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Offset = n
		}
	}

	findings, err := rt.findings.List(r.Context(), projectID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"findings": findings})
}

func (rt *Router) createFinding(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	var req createFindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	finding, err := rt.findings.Ingest(r.Context(), projectID, domain.Finding{
		Text:       req.Text,
		Domain:     req.Domain,
		Confidence: req.Confidence,
		Source:     req.Source,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordRecordAction(serviceName, domain.EntityFinding, domain.ActionCreated)
	writeJSON(w, http.StatusCreated, finding)
}

func (rt *Router) getFinding(w http.ResponseWriter, r *http.Request) {
	finding, err := rt.findings.Get(r.Context(), r.PathValue("projectID"), r.PathValue("findingID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, finding)
}

func (rt *Router) editFinding(w http.ResponseWriter, r *http.Request) {
	var patch domain.FindingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	finding, err := rt.findings.Edit(r.Context(), r.PathValue("projectID"), r.PathValue("findingID"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordRecordAction(serviceName, domain.EntityFinding, domain.ActionEdited)
	writeJSON(w, http.StatusOK, finding)
}

func (rt *Router) validateFinding(w http.ResponseWriter, r *http.Request) {
	finding, err := rt.findings.Validate(r.Context(), r.PathValue("projectID"), r.PathValue("findingID"))
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordRecordAction(serviceName, domain.EntityFinding, domain.ActionValidated)
	writeJSON(w, http.StatusOK, finding)
}

func (rt *Router) rejectFinding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	finding, err := rt.findings.Reject(r.Context(), r.PathValue("projectID"), r.PathValue("findingID"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordRecordAction(serviceName, domain.EntityFinding, domain.ActionRejected)
	writeJSON(w, http.StatusOK, finding)
}
