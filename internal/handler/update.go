package handler

import (
	"net/http"

	"InspectAPI/internal/logger"
	"InspectAPI/internal/model"
)

type UpdateRequest struct {
	Model  string         `json:"model"`
	ID     any            `json:"id"`
	Values map[string]any `json:"values"`
}

func UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !decodeRequest(w, r, "/api/update", &req) {
		return
	}
	d := lookupModel(w, req.Model)
	if d == nil {
		return
	}
	if req.ID == nil {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if len(req.Values) == 0 {
		http.Error(w, "values are required", http.StatusBadRequest)
		return
	}

	rec, err := model.Update(r.Context(), d, req.ID, req.Values)
	if err != nil {
		logger.Error("update_failed", map[string]any{
			"endpoint": "/api/update",
			"model":    req.Model,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to update record: "+err.Error(), http.StatusInternalServerError)
		return
	}
	PageCache.InvalidateTable(r.Context(), d.Table)
	writeJSON(w, "/api/update", rec)
}
