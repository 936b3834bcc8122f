package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"InspectAPI/internal/cache"
	"InspectAPI/internal/logger"
	"InspectAPI/internal/model"

	"github.com/Masterminds/squirrel"
)

// PageCache — серверный кэш страниц; nil допустим, тогда обработчики
// просто ходят в базу.
var PageCache *cache.Cache

// decodeRequest ограничивает метод POST-ом и разбирает JSON-тело.
func decodeRequest(w http.ResponseWriter, r *http.Request, endpoint string, dst any) bool {
	if r.Method != http.MethodPost {
		logger.Warn("method_not_allowed", map[string]any{
			"endpoint": endpoint,
			"method":   r.Method,
		})
		http.Error(w, "Only POST allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid_json", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		http.Error(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// lookupModel находит дескриптор по логическому имени или отвечает 404.
func lookupModel(w http.ResponseWriter, name string) *model.FieldDescriptor {
	d, ok := model.Registry[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Model %s not found", name), http.StatusNotFound)
		return nil
	}
	return d
}

func writeJSON(w http.ResponseWriter, endpoint string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
	}
}

// filterPredicate собирает доверенный предикат из пользовательских
// equality-фильтров: только whitelist-колонки, остальные ключи молча
// выпадают — как и невалидные поля сортировки.
func filterPredicate(d *model.FieldDescriptor, filters map[string]any) squirrel.Sqlizer {
	if len(filters) == 0 {
		return nil
	}
	eq := squirrel.Eq{}
	for k, v := range filters {
		if !d.HasField(k) {
			logger.Debug("filter_field_dropped", map[string]any{
				"model": d.Name,
				"field": k,
			})
			continue
		}
		eq[d.Table+"."+k] = v
	}
	if len(eq) == 0 {
		return nil
	}
	return eq
}

// applySortDefaults подставляет PrimaryDisplayField вместо пустого имени
// поля сортировки.
func applySortDefaults(d *model.FieldDescriptor, paging *model.PagingRequest) {
	if paging == nil {
		return
	}
	for i := range paging.Sorts {
		if paging.Sorts[i].Field == "" {
			paging.Sorts[i].Field = d.PrimaryDisplayField
		}
	}
}
