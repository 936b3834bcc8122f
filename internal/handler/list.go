package handler

import (
	"net/http"

	"InspectAPI/internal/logger"
	"InspectAPI/internal/model"
)

type ListRequest struct {
	Model          string               `json:"model"`
	Filters        map[string]any       `json:"filters"`
	Paging         *model.PagingRequest `json:"paging"`
	IncludeDeleted bool                 `json:"include_deleted"`
}

// ListHandler отдаёт страницу записей модели. Страницы кэшируются по
// {таблица, маршрут, параметры, пагинация}; любая запись в таблицу
// инвалидирует их по префиксу таблицы.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	var req ListRequest
	if !decodeRequest(w, r, "/api/list", &req) {
		return
	}
	d := lookupModel(w, req.Model)
	if d == nil {
		return
	}
	applySortDefaults(d, req.Paging)

	cacheKey := ""
	if PageCache != nil {
		params := map[string]any{
			"filters":         req.Filters,
			"include_deleted": req.IncludeDeleted,
		}
		cacheKey = PageCache.Key(d.Table, "list", params, req.Paging)
		var cached model.PagedResult
		hit, err := PageCache.Get(r.Context(), cacheKey, &cached)
		if err != nil {
			logger.Warn("cache_get_failed", map[string]any{
				"endpoint": "/api/list",
				"error":    err.Error(),
			})
		}
		if hit {
			writeJSON(w, "/api/list", &cached)
			return
		}
	}

	result, err := model.GetList(
		r.Context(), d,
		filterPredicate(d, req.Filters),
		req.Paging,
		!req.IncludeDeleted,
	)
	if err != nil {
		logger.Error("list_failed", map[string]any{
			"endpoint": "/api/list",
			"model":    req.Model,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to list records: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if PageCache != nil {
		if err := PageCache.Set(r.Context(), cacheKey, d.Table, result); err != nil {
			logger.Warn("cache_set_failed", map[string]any{
				"endpoint": "/api/list",
				"error":    err.Error(),
			})
		}
	}
	writeJSON(w, "/api/list", result)
}
