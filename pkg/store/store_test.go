package store

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/hill/curve"
)

func sampleMarkers() []hill.Marker {
	return []hill.Marker{
		{ID: "a", Label: "Research", Position: 320, Progress: 0.1, Rank: 1},
		{ID: "b", Label: "Build", Position: 900, Progress: 0.9, Rank: 2, LabelOffset: 15},
	}
}

func TestDecodeCurrentFormat(t *testing.T) {
	data, err := Encode(NewDocument(sampleMarkers()))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Version != SchemaVersion {
		t.Errorf("version = %d, want %d", doc.Version, SchemaVersion)
	}
	if len(doc.Markers) != 2 {
		t.Fatalf("got %d markers, want 2", len(doc.Markers))
	}
	b := doc.Markers[1]
	if b.ID != "b" || b.Label != "Build" || b.Position != 900 || b.Rank != 2 || b.LabelOffset != 15 {
		t.Errorf("marker b = %+v", b)
	}
	if doc.UpdatedAt.IsZero() {
		t.Error("updated_at lost")
	}
}

func TestDecodeLegacyList(t *testing.T) {
	legacy := `[
		{"id": 1699999999123, "name": "Research", "x": 320, "progress": 0.1},
		{"id": "m2", "name": "Ship", "progress": 0.9, "priorityRank": 4, "labelOffset": -20}
	]`
	doc, err := Decode([]byte(legacy))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Markers) != 2 {
		t.Fatalf("got %d markers, want 2", len(doc.Markers))
	}

	a, b := doc.Markers[0], doc.Markers[1]
	if a.ID != "1699999999123" || a.Label != "Research" || a.Position != 320 {
		t.Errorf("legacy marker a = %+v", a)
	}
	if b.Rank != 4 || b.LabelOffset != -20 {
		t.Errorf("legacy marker b aliases not decoded: %+v", b)
	}
	if !math.IsNaN(b.Position) {
		t.Errorf("b.Position = %v, want NaN before Resolve", b.Position)
	}

	c := curve.Default()
	doc.Resolve(c)
	if got, want := doc.Markers[1].Position, c.PositionAt(0.9); got != want {
		t.Errorf("resolved position = %v, want %v", got, want)
	}
	if doc.Markers[0].Position != 320 {
		t.Errorf("Resolve moved a stored position")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"garbage", "{not json", errors.ErrCodeInvalidFormat},
		{"bad list", "[1, 2]", errors.ErrCodeInvalidFormat},
		{"future version", `{"version": 99, "markers": []}`, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode(%q) = %v, want code %s", tt.data, err, tt.code)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	doc, err := Decode([]byte("  \n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Markers == nil || len(doc.Markers) != 0 {
		t.Errorf("markers = %#v, want empty slice", doc.Markers)
	}
}

func TestDecodeMalformedUpdatedAt(t *testing.T) {
	for _, in := range []string{
		`{"version": 1, "markers": [], "updated_at": "not-a-time"}`,
		`{"version": 1, "markers": [], "updated_at": 5}`,
	} {
		doc, err := Decode([]byte(in))
		if err != nil {
			t.Fatalf("Decode(%s): %v", in, err)
		}
		if !doc.UpdatedAt.IsZero() {
			t.Errorf("Decode(%s): updated_at = %v, want zero", in, doc.UpdatedAt)
		}
	}
}

func TestResolveNeitherField(t *testing.T) {
	doc, err := Decode([]byte(`[{"id": "x", "name": "Lost"}]`))
	if err != nil {
		t.Fatal(err)
	}
	c := curve.Default()
	doc.Resolve(c)
	if m := doc.Markers[0]; m.Position != c.DomainStart || m.Progress != 0 {
		t.Errorf("marker = %+v, want domain start", m)
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, errors.ErrCodeChartNotFound) {
		t.Fatalf("Load(missing) = %v, want CHART_NOT_FOUND", err)
	}
	if err := s.Save(ctx, "../escape", NewDocument(nil)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Save(../escape) = %v, want INVALID_INPUT", err)
	}

	if err := s.Save(ctx, "roadmap", NewDocument(sampleMarkers())); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, err := s.Load(ctx, "roadmap")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Markers) != 2 || doc.Markers[0].Label != "Research" {
		t.Errorf("loaded %+v", doc.Markers)
	}

	if err := s.Save(ctx, "roadmap", NewDocument(nil)); err != nil {
		t.Fatalf("Save empty: %v", err)
	}
	doc, err = s.Load(ctx, "roadmap")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Markers) != 0 {
		t.Errorf("after overwrite got %d markers, want 0", len(doc.Markers))
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), "roadmap", NewDocument(sampleMarkers())); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "roadmap.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir contents = %v, want only roadmap.json", names)
	}

	info, err := os.Stat(s.Path("roadmap"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestFileStoreReadsLegacyFile(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"id": 1, "name": "Imported", "x": 400, "progress": 0.2}]`
	if err := os.WriteFile(filepath.Join(dir, "old.json"), []byte(legacy), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := s.Load(context.Background(), "old")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Markers) != 1 || doc.Markers[0].ID != "1" || doc.Markers[0].Label != "Imported" {
		t.Errorf("markers = %+v", doc.Markers)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFileStore(dir)
	if _, err := s.Load(context.Background(), "bad"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(bad) = %v, want INVALID_FORMAT", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)
	if s.Saves() != 2 {
		t.Errorf("Saves() = %d, want 2", s.Saves())
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	markers := sampleMarkers()
	if err := s.Save(ctx, "c", NewDocument(markers)); err != nil {
		t.Fatal(err)
	}
	markers[0].Label = "mutated"

	doc, _ := s.Load(ctx, "c")
	if doc.Markers[0].Label != "Research" {
		t.Error("Save aliased the caller's slice")
	}
	doc.Markers[0].Label = "mutated"
	again, _ := s.Load(ctx, "c")
	if again.Markers[0].Label != "Research" {
		t.Error("Load aliased the stored slice")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     Config
		backend string
		code    errors.Code
	}{
		{name: "default is file", cfg: Config{Path: t.TempDir()}, backend: BackendFile},
		{name: "memory", cfg: Config{Backend: BackendMemory}, backend: BackendMemory},
		{name: "unknown", cfg: Config{Backend: "sqlite"}, code: errors.ErrCodeInvalidConfig},
		{name: "redis without url", cfg: Config{Backend: BackendRedis}, code: errors.ErrCodeInvalidConfig},
		{name: "mongo without uri", cfg: Config{Backend: BackendMongo}, code: errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("Open = %v, want code %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			if s.Name() != tt.backend {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.backend)
			}
		})
	}
}
