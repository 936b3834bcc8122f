package handler

import (
	"net/http"

	"InspectAPI/internal/logger"
	"InspectAPI/internal/model"
)

type DeleteRequest struct {
	Model string `json:"model"`
	ID    any    `json:"id"`
}

// DeleteHandler помечает запись удалённой (soft delete) и инвалидирует
// кэш страниц таблицы.
func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if !decodeRequest(w, r, "/api/delete", &req) {
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

	if err := model.Delete(r.Context(), d, req.ID); err != nil {
		logger.Error("delete_failed", map[string]any{
			"endpoint": "/api/delete",
			"model":    req.Model,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to delete record: "+err.Error(), http.StatusInternalServerError)
		return
	}
	PageCache.InvalidateTable(r.Context(), d.Table)
	writeJSON(w, "/api/delete", map[string]bool{"ok": true})
}
