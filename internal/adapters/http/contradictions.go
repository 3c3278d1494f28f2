package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/dealdesk/diligence/internal/core/domain"
)

func (rt *Router) listContradictions(w http.ResponseWriter, r *http.Request) {
	contradictions, err := rt.contradictions.List(r.Context(), r.PathValue("projectID"), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contradictions": contradictions})
}

func (rt *Router) createContradiction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FindingAID  string `json:"finding_a_id"`
		FindingBID  string `json:"finding_b_id"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	contradiction, err := rt.contradictions.Create(r.Context(), r.PathValue("projectID"), domain.Contradiction{
		FindingAID:  req.FindingAID,
		FindingBID:  req.FindingBID,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordRecordAction(serviceName, domain.EntityContradiction, domain.ActionCreated)
	writeJSON(w, http.StatusCreated, contradiction)
}

func (rt *Router) resolveContradiction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	contradiction, err := rt.contradictions.Resolve(
		r.Context(),
		r.PathValue("projectID"),
		r.PathValue("contradictionID"),
		req.Status,
		req.Note,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordRecordAction(serviceName, domain.EntityContradiction, domain.ActionResolved)
	writeJSON(w, http.StatusOK, contradiction)
}
