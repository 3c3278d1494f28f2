package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/dealdesk/diligence/internal/core/domain"
)

func (rt *Router) listGaps(w http.ResponseWriter, r *http.Request) {
	gaps, err := rt.gaps.List(r.Context(), r.PathValue("projectID"), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"gaps": gaps})
}

func (rt *Router) createGap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
		Category    string `json:"category"`
		Priority    string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	gap, err := rt.gaps.Create(r.Context(), r.PathValue("projectID"), domain.Gap{
		Description: req.Description,
		Category:    domain.GapCategory(req.Category),
		Priority:    domain.GapPriority(req.Priority),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordRecordAction(serviceName, domain.EntityGap, domain.ActionCreated)
	writeJSON(w, http.StatusCreated, gap)
}

func (rt *Router) updateGap(w http.ResponseWriter, r *http.Request) {
	var patch domain.GapPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	gap, err := rt.gaps.Update(r.Context(), r.PathValue("projectID"), r.PathValue("gapID"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordRecordAction(serviceName, domain.EntityGap, domain.ActionUpdated)
	writeJSON(w, http.StatusOK, gap)
}
