package chart

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/observability"
	"github.com/matzehuels/hillchart/pkg/store"
)

func openTest(t *testing.T, s store.Store) *Chart {
	t.Helper()
	n := 0
	c, err := Open(context.Background(), "test", s, hill.DefaultConfig(),
		WithLogger(log.New(io.Discard)),
		WithEngineOptions(hill.WithIDs(func() string {
			n++
			return fmt.Sprintf("m%02d", n)
		})),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return c
}

func savedMarkers(t *testing.T, s store.Store) []hill.Marker {
	t.Helper()
	doc, err := s.Load(context.Background(), "test")
	if err != nil {
		t.Fatalf("store Load: %v", err)
	}
	return doc.Markers
}

func TestOpenNew(t *testing.T) {
	c := openTest(t, store.NewMemoryStore())
	if len(c.Markers()) != 0 {
		t.Errorf("new chart has %d markers", len(c.Markers()))
	}
	if c.Name() != "test" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestOpenInvalidName(t *testing.T) {
	_, err := Open(context.Background(), "../etc", store.NewMemoryStore(), hill.DefaultConfig())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open = %v, want INVALID_INPUT", err)
	}
}

func TestOpenLegacyDocument(t *testing.T) {
	s := store.NewMemoryStore()
	doc, err := store.Decode([]byte(`[
		{"id": 1, "name": "Research", "progress": 0.1},
		{"id": 2, "name": "Ship", "x": 900, "progress": 0.9}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), "test", doc); err != nil {
		t.Fatal(err)
	}

	c := openTest(t, s)
	markers := c.Markers()
	if len(markers) != 2 {
		t.Fatalf("got %d markers", len(markers))
	}
	cv := c.Config().Curve
	if markers[0].Position != cv.PositionAt(0.1) {
		t.Errorf("progress-only marker at %v, want %v", markers[0].Position, cv.PositionAt(0.1))
	}
	for _, m := range markers {
		if m.Rank == 0 {
			t.Errorf("marker %s has no rank after load", m.ID)
		}
	}
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := openTest(t, s)

	a, err := c.AddAt(ctx, "Research", 0.1)
	if err != nil {
		t.Fatalf("AddAt: %v", err)
	}
	if _, err := c.AddAt(ctx, "Ship", 0.9); err != nil {
		t.Fatal(err)
	}
	if got := len(savedMarkers(t, s)); got != 2 {
		t.Fatalf("saved %d markers after add, want 2", got)
	}

	saves := s.Saves()
	if _, err := c.BeginDrag(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.MoveTo(ctx, 700); err != nil {
		t.Fatal(err)
	}
	if s.Saves() != saves {
		t.Errorf("live drag saved: %d saves, want %d", s.Saves(), saves)
	}
	if savedMarkers(t, s)[0].Position == 700 {
		t.Error("live drag position reached the store")
	}

	m, err := c.Drop(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	// Begin and drop each take a counter value.
	if m.Position != 700 || m.Rank != 2 {
		t.Errorf("dropped marker = %+v, want position 700 rank 2", m)
	}
	if m.Rank != c.Counter() {
		t.Errorf("dropped rank %d, counter %d", m.Rank, c.Counter())
	}
	if got := savedMarkers(t, s)[0]; got.Position != 700 || got.Rank != 2 {
		t.Errorf("saved after drop = %+v", got)
	}

	if _, err := c.Nudge(ctx, a.ID, 12); err != nil {
		t.Fatal(err)
	}
	if got := savedMarkers(t, s)[0].LabelOffset; got != 12 {
		t.Errorf("saved label offset = %v, want 12", got)
	}

	n, err := c.Clear(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	if got := len(savedMarkers(t, s)); got != 0 {
		t.Errorf("saved %d markers after clear", got)
	}
}

func TestReopenKeepsLayoutInputs(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := openTest(t, s)
	a, _ := c.AddAt(ctx, "Research", 0.1)
	b, _ := c.AddAt(ctx, "Prototype", 0.12)
	c.Move(ctx, b.ID, c.Config().Curve.PositionAt(0.13))
	c.Move(ctx, a.ID, c.Config().Curve.PositionAt(0.11))
	c.Nudge(ctx, b.ID, -8)

	again := openTest(t, s)
	want, got := c.Markers(), again.Markers()
	if len(got) != len(want) {
		t.Fatalf("reopened %d markers, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("marker %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	c := openTest(t, store.NewMemoryStore())
	for _, l := range []string{"a", "b", "c"} {
		c.AddAt(ctx, l, 0.5)
	}

	tests := []struct {
		ref  string
		want string
		code errors.Code
	}{
		{ref: "m02", want: "m02"},
		{ref: " m03 ", want: "m03"},
		{ref: "m0", code: errors.ErrCodeAmbiguousID},
		{ref: "zz", code: errors.ErrCodeMarkerNotFound},
		{ref: "", code: errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			m, err := c.Lookup(tt.ref)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("Lookup(%q) = %v, want %s", tt.ref, err, tt.code)
				}
				return
			}
			if err != nil || m.ID != tt.want {
				t.Errorf("Lookup(%q) = %q, %v, want %q", tt.ref, m.ID, err, tt.want)
			}
		})
	}
}

func TestInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := openTest(t, s)

	if _, err := c.Add(ctx, "   ", 300); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Add(blank) = %v", err)
	}
	if _, err := c.AddAt(ctx, "x", 1.5); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddAt(1.5) = %v", err)
	}
	if _, err := c.MoveTo(ctx, 400); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("MoveTo without drag = %v", err)
	}
	if _, err := c.Remove(ctx, "nope"); !errors.Is(err, errors.ErrCodeMarkerNotFound) {
		t.Errorf("Remove(nope) = %v", err)
	}
	if s.Saves() != 0 {
		t.Errorf("rejected input saved %d times", s.Saves())
	}
}

type failingStore struct{ *store.MemoryStore }

func (failingStore) Save(context.Context, string, store.Document) error {
	return errors.Wrap(errors.ErrCodeStore, stderrors.New("disk full"), "save")
}

func TestSaveFailureKeepsChange(t *testing.T) {
	c := openTest(t, failingStore{store.NewMemoryStore()})
	m, err := c.AddAt(context.Background(), "Research", 0.1)
	if !errors.Is(err, errors.ErrCodeStore) {
		t.Fatalf("AddAt = %v, want STORE_FAILED", err)
	}
	if _, ok := c.Frame().Placement(m.ID); !ok {
		t.Error("marker missing from layout after failed save")
	}
}

type recordingHooks struct {
	mu     sync.Mutex
	layout []string
	loads  int
	saves  int
}

func (h *recordingHooks) OnLayout(_ context.Context, op string, _ int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layout = append(h.layout, op)
}

func (h *recordingHooks) OnLoad(context.Context, string, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads++
}

func (h *recordingHooks) OnSave(context.Context, string, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saves++
}

func TestHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetChartHooks(h)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	c := openTest(t, store.NewMemoryStore())
	a, _ := c.AddAt(ctx, "Research", 0.1)
	c.BeginDrag(ctx, a.ID)
	c.MoveTo(ctx, 500)
	c.Drop(ctx, a.ID)
	c.Settle(ctx)

	want := []string{"add", "drag", "move", "drop", "settle"}
	if fmt.Sprint(h.layout) != fmt.Sprint(want) {
		t.Errorf("layout ops = %v, want %v", h.layout, want)
	}
	if h.loads != 1 || h.saves != 2 {
		t.Errorf("loads = %d saves = %d, want 1 and 2", h.loads, h.saves)
	}
}

func TestConcurrentDrags(t *testing.T) {
	ctx := context.Background()
	c := openTest(t, store.NewMemoryStore())
	a, _ := c.AddAt(ctx, "a", 0.2)
	b, _ := c.AddAt(ctx, "b", 0.8)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := a.ID
			if i%2 == 1 {
				id = b.ID
			}
			c.Move(ctx, id, float64(100+i*40))
			_ = c.Frame()
		}()
	}
	wg.Wait()

	if _, ok := c.Dragging(); ok {
		t.Error("drag left open after complete moves")
	}
	if c.Counter() != 40 {
		t.Errorf("counter = %d after 20 moves, want 40", c.Counter())
	}
	var top int64
	for _, m := range c.Markers() {
		if m.Rank < 2 || m.Rank > 40 || m.Rank%2 != 0 {
			t.Errorf("marker %s rank %d out of range", m.ID, m.Rank)
		}
		top = max(top, m.Rank)
	}
	if top != c.Counter() {
		t.Errorf("highest rank %d, want counter %d", top, c.Counter())
	}
}
