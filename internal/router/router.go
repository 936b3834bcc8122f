package router

import (
	"net/http"

	"InspectAPI/internal/config"
	"InspectAPI/internal/handler"
	"InspectAPI/internal/logger"
)

// InitRoutes регистрирует маршруты API на http.DefaultServeMux.
func InitRoutes(cfg *config.Config) {
	routes := map[string]http.HandlerFunc{
		"/api/list":   handler.ListHandler,
		"/api/get":    handler.GetHandler,
		"/api/exists": handler.ExistsHandler,
		"/api/create": handler.CreateHandler,
		"/api/update": handler.UpdateHandler,
		"/api/delete": handler.DeleteHandler,
	}
	for path, h := range routes {
		http.HandleFunc(path, withCORS(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials, withLogging(h)))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		fields := map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": sw.status,
		}
		switch {
		case sw.status >= 500:
			logger.Error("response", fields)
		case sw.status >= 400:
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	}
}
