package itests

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"InspectAPI/internal/config"
	"InspectAPI/internal/entity"
	"InspectAPI/internal/model"
	"InspectAPI/internal/router"
)

var (
	testBaseURL string
	httpSrv     *http.Server
)

// Пакет гоняется только с ITESTS=1 и локальным Postgres-ом; без них все
// тесты скипаются через requireBootstrap.
func TestMain(m *testing.M) {
	if os.Getenv("ITESTS") != "1" {
		os.Exit(m.Run())
	}

	cfg := config.LoadConfig()

	teardownDB, err := SetupAndTeardownTestDB(cfg.PostgresDSN, cfg.MigrationsDir)
	if err != nil {
		println("setup test DB failed:", err.Error())
		os.Exit(1)
	}

	if err := entity.Register(); err != nil {
		println("register entities failed:", err.Error())
		os.Exit(1)
	}
	model.SetLocale(cfg.Locale)

	if err := seed(); err != nil {
		println("seed test DB failed:", err.Error())
		_ = teardownDB()
		os.Exit(1)
	}

	router.InitRoutes(cfg)
	httpSrv = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: http.DefaultServeMux,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			println("HTTP server failed:", err.Error())
			os.Exit(1)
		}
	}()
	if err := waitForPort("localhost", cfg.Port, 3*time.Second); err != nil {
		println("HTTP port not ready:", err.Error())
		_ = httpSrv.Close()
		os.Exit(1)
	}
	testBaseURL = fmt.Sprintf("http://localhost:%s", cfg.Port)

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	_ = httpSrv.Shutdown(ctx)
	cancel()
	if err := teardownDB(); err != nil {
		println("drop test DB failed:", err.Error())
	}
	os.Exit(code)
}

func requireBootstrap(t *testing.T) {
	t.Helper()
	if testBaseURL == "" || httpSrv == nil {
		t.Skip("set ITESTS=1 with a local Postgres to run integration tests")
	}
}

// seed наполняет базу через сам слой доступа — заодно прогоняется Insert.
func seed() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows := []struct {
		model  string
		values map[string]any
	}{
		{"buildings", map[string]any{"id": "b1", "name": "North Tower", "address": "1 Main St", "year_built": 1987}},
		{"buildings", map[string]any{"id": "b2", "name": "South Annex", "address": "2 Main St", "year_built": 2004}},
		{"inspectors", map[string]any{"id": "u1", "full_name": "R. Alvarez", "email": "alvarez@example.com", "license_no": "LIC-100"}},
		{"inspections", map[string]any{
			"id": "i1", "title": "Annual check", "status": "open",
			"building_id": "b1", "inspector_id": "u1",
			"checklist": `[{"item":"roof","done":false}]`,
		}},
		{"inspections", map[string]any{
			"id": "i2", "title": "Follow-up", "status": "open",
			"building_id": "b2", "inspector_id": "u1",
		}},
		{"inspections", map[string]any{
			"id": "i3", "title": "Closed audit", "status": "done",
			"building_id": "b1", "inspector_id": "u1",
		}},
		{"findings", map[string]any{
			"id": "f1", "title": "Roof crack", "severity": 2,
			"inspection_id": "i1", "room": "attic",
		}},
		{"findings", map[string]any{
			"id": "f2", "title": "Loose rail", "severity": 1,
			"inspection_id": "i1", "room": "stairs",
		}},
		{"findings", map[string]any{
			"id": "f3", "title": "Paint peeling", "severity": 0,
			"inspection_id": "i2", "room": "lobby",
		}},
		{"photos", map[string]any{
			"id": "p1", "file_name": "crack.jpg", "object_key": "photos/crack.jpg",
			"finding_id": "f1",
		}},
	}
	for _, r := range rows {
		d, ok := model.Registry[r.model]
		if !ok {
			return fmt.Errorf("seed: model %q not registered", r.model)
		}
		if _, err := model.Insert(ctx, d, r.values); err != nil {
			return fmt.Errorf("seed %s: %w", r.model, err)
		}
	}
	return nil
}

func waitForPort(host, port string, timeout time.Duration) error {
	addr := net.JoinHostPort(host, port)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 150*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("port %s not reachable within %s", port, timeout)
}
