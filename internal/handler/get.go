package handler

import (
	"net/http"

	"InspectAPI/internal/logger"
	"InspectAPI/internal/model"
)

type GetRequest struct {
	Model          string `json:"model"`
	ID             any    `json:"id"`
	IncludeDeleted bool   `json:"include_deleted"`
}

// GetHandler отдаёт одну запись по первичному ключу. Отсутствующая запись —
// это пустой объект, а не 404: клиент проверяет значимые поля сам.
func GetHandler(w http.ResponseWriter, r *http.Request) {
	var req GetRequest
	if !decodeRequest(w, r, "/api/get", &req) {
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

	rec, err := model.Get(r.Context(), d, req.ID, !req.IncludeDeleted)
	if err != nil {
		logger.Error("get_failed", map[string]any{
			"endpoint": "/api/get",
			"model":    req.Model,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to get record: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, "/api/get", rec)
}
