package handler

import (
	"net/http"

	"InspectAPI/internal/logger"
	"InspectAPI/internal/model"
)

type CreateRequest struct {
	Model  string         `json:"model"`
	Values map[string]any `json:"values"`
}

func CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decodeRequest(w, r, "/api/create", &req) {
		return
	}
	d := lookupModel(w, req.Model)
	if d == nil {
		return
	}
	if len(req.Values) == 0 {
		http.Error(w, "values are required", http.StatusBadRequest)
		return
	}

	rec, err := model.Insert(r.Context(), d, req.Values)
	if err != nil {
		logger.Error("create_failed", map[string]any{
			"endpoint": "/api/create",
			"model":    req.Model,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to create record: "+err.Error(), http.StatusInternalServerError)
		return
	}
	PageCache.InvalidateTable(r.Context(), d.Table)
	writeJSON(w, "/api/create", rec)
}
