package handler

import (
	"net/http"

	"InspectAPI/internal/logger"
	"InspectAPI/internal/model"
)

type ExistsRequest struct {
	Model          string `json:"model"`
	ID             any    `json:"id"`
	IncludeDeleted bool   `json:"include_deleted"`
}

func ExistsHandler(w http.ResponseWriter, r *http.Request) {
	var req ExistsRequest
	if !decodeRequest(w, r, "/api/exists", &req) {
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

	exists, err := model.ItemExists(r.Context(), d, req.ID, !req.IncludeDeleted)
	if err != nil {
		logger.Error("exists_failed", map[string]any{
			"endpoint": "/api/exists",
			"model":    req.Model,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to check record: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, "/api/exists", map[string]bool{"exists": exists})
}
