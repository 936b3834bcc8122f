package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testCache(t *testing.T, policy *Policy) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, policy), mr
}

func TestKeyDeterministicAndPrefixed(t *testing.T) {
	c := &Cache{}
	params := map[string]any{"status": "open"}
	paging := map[string]any{"page_size": 10, "page_index": 0}

	k1 := c.Key("inspections", "list", params, paging)
	k2 := c.Key("inspections", "list", params, paging)
	if k1 != k2 {
		t.Fatalf("key not deterministic: %s vs %s", k1, k2)
	}
	if !strings.HasPrefix(k1, "page:inspections:list:") {
		t.Fatalf("unexpected key shape: %s", k1)
	}

	k3 := c.Key("inspections", "list", params, map[string]any{"page_size": 10, "page_index": 1})
	if k1 == k3 {
		t.Fatalf("different paging must produce a different key")
	}
}

func TestGetSetRoundtrip(t *testing.T) {
	c, _ := testCache(t, &Policy{DefaultMinutes: 5})
	ctx := context.Background()

	type page struct {
		Items []string `json:"items"`
		Total int      `json:"total"`
	}
	key := c.Key("inspections", "list", nil, nil)

	var miss page
	if hit, err := c.Get(ctx, key, &miss); err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	want := page{Items: []string{"a", "b"}, Total: 2}
	if err := c.Set(ctx, key, "inspections", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got page
	hit, err := c.Get(ctx, key, &got)
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if got.Total != 2 || len(got.Items) != 2 || got.Items[0] != "a" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestSetHonoursTablePolicy(t *testing.T) {
	policy := &Policy{DefaultMinutes: 5, Tables: map[string]int{"photos": 0, "buildings": 30}}
	c, mr := testCache(t, policy)
	ctx := context.Background()

	// нулевой TTL — таблица вообще не попадает в кэш
	key := c.Key("photos", "list", nil, nil)
	if err := c.Set(ctx, key, "photos", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("table with zero TTL must not be cached")
	}

	key = c.Key("buildings", "list", nil, nil)
	if err := c.Set(ctx, key, "buildings", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL(key); ttl != 30*time.Minute {
		t.Fatalf("expected per-table TTL 30m, got %v", ttl)
	}

	key = c.Key("inspections", "list", nil, nil)
	if err := c.Set(ctx, key, "inspections", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL(key); ttl != 5*time.Minute {
		t.Fatalf("expected default TTL 5m, got %v", ttl)
	}
}

func TestCorruptValueEvictedAsMiss(t *testing.T) {
	c, mr := testCache(t, &Policy{DefaultMinutes: 5})
	ctx := context.Background()

	key := c.Key("inspections", "list", nil, nil)
	mr.Set(key, "{not json")

	var dest map[string]any
	hit, err := c.Get(ctx, key, &dest)
	if err != nil || hit {
		t.Fatalf("corrupt value must read as miss, hit=%v err=%v", hit, err)
	}
	if mr.Exists(key) {
		t.Fatalf("corrupt value must be evicted")
	}
}

func TestInvalidateTableRemovesOnlyItsPages(t *testing.T) {
	c, mr := testCache(t, &Policy{DefaultMinutes: 5})
	ctx := context.Background()

	keys := []string{
		c.Key("inspections", "list", nil, map[string]any{"page_index": 0}),
		c.Key("inspections", "list", nil, map[string]any{"page_index": 1}),
		c.Key("inspections", "get", map[string]any{"id": "i1"}, nil),
	}
	other := c.Key("buildings", "list", nil, nil)
	for _, k := range append(keys, other) {
		if err := c.Set(ctx, k, "inspections", "v"); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	c.InvalidateTable(ctx, "inspections")

	for _, k := range keys {
		if mr.Exists(k) {
			t.Fatalf("key survived invalidation: %s", k)
		}
	}
	if !mr.Exists(other) {
		t.Fatalf("invalidation must not cross table boundaries")
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var dest map[string]any
	if hit, err := c.Get(ctx, "k", &dest); err != nil || hit {
		t.Fatalf("nil cache Get must miss cleanly, hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "k", "t", "v"); err != nil {
		t.Fatalf("nil cache Set must be a no-op: %v", err)
	}
	c.InvalidateTable(ctx, "t")
}

func TestLoadPolicyFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yml")
	data := "default_minutes: 7\ntables:\n  photos: 0\n  buildings: 45\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if p.TTL("inspections") != 7*time.Minute {
		t.Fatalf("default TTL mismatch: %v", p.TTL("inspections"))
	}
	if p.TTL("buildings") != 45*time.Minute {
		t.Fatalf("per-table TTL mismatch: %v", p.TTL("buildings"))
	}
	if p.TTL("photos") != 0 {
		t.Fatalf("zero TTL must disable caching: %v", p.TTL("photos"))
	}

	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("missing file must be an error")
	}
}
