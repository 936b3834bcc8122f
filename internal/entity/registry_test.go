package entity

import (
	"context"
	"testing"

	"InspectAPI/internal/model"
)

func withCleanRegistry(t *testing.T) {
	t.Helper()
	orig := model.Registry
	model.Registry = map[string]*model.FieldDescriptor{}
	t.Cleanup(func() { model.Registry = orig })
}

func TestRegisterAllEntities(t *testing.T) {
	withCleanRegistry(t)

	if err := Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	for _, name := range []string{"buildings", "inspectors", "inspections", "findings", "photos"} {
		if _, ok := model.Registry[name]; !ok {
			t.Fatalf("model %q not registered", name)
		}
	}
	if !Inspections.HasField("building_id") {
		t.Fatalf("field whitelist not initialised after Register")
	}
}

func TestSeverityLabelMapping(t *testing.T) {
	cases := []struct {
		severity any
		want     string
	}{
		{int64(0), "info"},
		{int16(1), "minor"}, // pgx отдаёт smallint как int16
		{int32(2), "major"},
		{float64(3), "critical"},
	}
	for _, c := range cases {
		got, err := severityLabel(context.Background(), model.Record{"severity": c.severity})
		if err != nil {
			t.Fatalf("severityLabel(%v): %v", c.severity, err)
		}
		if got != c.want {
			t.Fatalf("severityLabel(%v) = %v, want %q", c.severity, got, c.want)
		}
	}
}

func TestSeverityLabelRejectsBadValues(t *testing.T) {
	if _, err := severityLabel(context.Background(), model.Record{"severity": "major"}); err == nil {
		t.Fatalf("non-numeric severity must be an error")
	}
	if _, err := severityLabel(context.Background(), model.Record{"severity": int64(9)}); err == nil {
		t.Fatalf("out-of-range severity must be an error")
	}
	if _, err := severityLabel(context.Background(), model.Record{}); err == nil {
		t.Fatalf("missing severity must be an error")
	}
}

func TestDecodeChecklist(t *testing.T) {
	got, err := decodeChecklist(context.Background(), model.Record{
		"checklist": `[{"item":"roof","done":true}]`,
	})
	if err != nil {
		t.Fatalf("decodeChecklist: %v", err)
	}
	items, ok := got.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected decoded shape: %#v", got)
	}
	first, ok := items[0].(map[string]any)
	if !ok || first["item"] != "roof" || first["done"] != true {
		t.Fatalf("unexpected decoded item: %#v", items[0])
	}
}

func TestDecodeChecklistEmptyAndInvalid(t *testing.T) {
	if got, err := decodeChecklist(context.Background(), model.Record{}); err != nil || got != nil {
		t.Fatalf("missing checklist must decode to nil: %v %v", got, err)
	}
	if got, err := decodeChecklist(context.Background(), model.Record{"checklist": ""}); err != nil || got != nil {
		t.Fatalf("empty checklist must decode to nil: %v %v", got, err)
	}
	if _, err := decodeChecklist(context.Background(), model.Record{"checklist": "{broken"}); err == nil {
		t.Fatalf("malformed checklist must be an error")
	}
}

type staticSigner struct {
	url string
	key string
}

func (s *staticSigner) SignedURL(_ context.Context, key string) (string, error) {
	s.key = key
	return s.url, nil
}

func TestPhotoDownloadURL(t *testing.T) {
	orig := signer
	t.Cleanup(func() { signer = orig })

	fake := &staticSigner{url: "https://cdn.example/signed"}
	SetSigner(fake)

	got, err := photoDownloadURL(context.Background(), model.Record{"object_key": "photos/p1.jpg"})
	if err != nil {
		t.Fatalf("photoDownloadURL: %v", err)
	}
	if got != "https://cdn.example/signed" || fake.key != "photos/p1.jpg" {
		t.Fatalf("signer not used as expected: url=%v key=%q", got, fake.key)
	}
}

func TestPhotoDownloadURLWithoutSigner(t *testing.T) {
	orig := signer
	t.Cleanup(func() { signer = orig })
	SetSigner(nil)

	if _, err := photoDownloadURL(context.Background(), model.Record{"object_key": "k"}); err == nil {
		t.Fatalf("missing signer must be an error")
	}
}

func TestValueCoercions(t *testing.T) {
	if n, ok := toInt64(int16(7)); !ok || n != 7 {
		t.Fatalf("toInt64(int16) = %d, %v", n, ok)
	}
	if _, ok := toInt64("7"); ok {
		t.Fatalf("toInt64 must reject strings")
	}
	if s, ok := toString([]byte("abc")); !ok || s != "abc" {
		t.Fatalf("toString([]byte) = %q, %v", s, ok)
	}
	if _, ok := toString(42); ok {
		t.Fatalf("toString must reject numbers")
	}
}
