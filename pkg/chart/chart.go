// Package chart binds a layout engine to a store.
//
// A [Chart] serializes every operation with a mutex, so the HTTP server
// and the TUI can share one. Operations that change what is worth keeping
// (add, remove, drop, move, nudge, clear) save the markers afterwards.
// Drag begin and drag move are live and never touch the store.
//
// Markers are addressed by id or by a unique id prefix, as typed on the
// command line.
package chart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/observability"
	"github.com/matzehuels/hillchart/pkg/store"
)

// Option configures a Chart.
type Option func(*options)

type options struct {
	logger *log.Logger
	engine []hill.Option
}

// WithLogger sets the logger for the chart and its engine.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
		o.engine = append(o.engine, hill.WithLogger(l))
	}
}

// WithEngineOptions passes options through to [hill.NewEngine].
func WithEngineOptions(opts ...hill.Option) Option {
	return func(o *options) { o.engine = append(o.engine, opts...) }
}

// Chart is a named, persisted hill chart.
type Chart struct {
	mu     sync.Mutex
	name   string
	engine *hill.Engine
	store  store.Store
	logger *log.Logger
}

// Open loads the chart called name from s. A chart that was never saved
// opens empty. cfg must be valid.
func Open(ctx context.Context, name string, s store.Store, cfg hill.Config, opts ...Option) (*Chart, error) {
	if err := errors.ValidateChartName(name); err != nil {
		return nil, err
	}
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Chart{
		name:   name,
		engine: hill.NewEngine(cfg, o.engine...),
		store:  s,
		logger: o.logger,
	}

	start := time.Now()
	doc, err := s.Load(ctx, name)
	if errors.Is(err, errors.ErrCodeChartNotFound) {
		doc, err = store.NewDocument(nil), nil
		c.logger.Debug("new chart", "chart", name, "store", s.Name())
	}
	observability.Chart().OnLoad(ctx, s.Name(), name, len(doc.Markers), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	doc.Resolve(cfg.Curve)
	if repaired := c.engine.Load(doc.Markers); repaired > 0 {
		c.logger.Info("repaired marker ranks", "chart", name, "markers", repaired)
	}
	return c, nil
}

// Name returns the chart name.
func (c *Chart) Name() string { return c.name }

// Config returns the engine configuration.
func (c *Chart) Config() hill.Config { return c.engine.Config() }

// Markers returns the markers in stored order.
func (c *Chart) Markers() []hill.Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Markers()
}

// Frame returns the current layout.
func (c *Chart) Frame() hill.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Frame()
}

// Alignments returns the alignment memory.
func (c *Chart) Alignments() []hill.Alignment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Alignments()
}

// Counter returns the last drag rank handed out.
func (c *Chart) Counter() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Counter()
}

// Dragging returns the marker being dragged.
func (c *Chart) Dragging() (hill.Marker, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.engine.Dragging()
	if !ok {
		return hill.Marker{}, false
	}
	return c.engine.Marker(id)
}

// Lookup returns the marker matching ref.
func (c *Chart) Lookup(ref string) (hill.Marker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(ref)
}

// Add creates a marker at a domain position.
func (c *Chart) Add(ctx context.Context, label string, position float64) (hill.Marker, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return hill.Marker{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var m hill.Marker
	c.layout(ctx, "add", func() { m, _ = c.engine.Add(label, position) })
	return m, c.save(ctx)
}

// AddAt creates a marker at a progress fraction.
func (c *Chart) AddAt(ctx context.Context, label string, progress float64) (hill.Marker, error) {
	if err := errors.ValidateProgress(progress); err != nil {
		return hill.Marker{}, err
	}
	return c.Add(ctx, label, c.engine.Curve().PositionAt(progress))
}

// Remove deletes the marker matching ref.
func (c *Chart) Remove(ctx context.Context, ref string) (hill.Marker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.lookup(ref)
	if err != nil {
		return hill.Marker{}, err
	}
	c.layout(ctx, "remove", func() { c.engine.Remove(m.ID) })
	return m, c.save(ctx)
}

// BeginDrag starts a live drag.
func (c *Chart) BeginDrag(ctx context.Context, ref string) (hill.Marker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.lookup(ref)
	if err != nil {
		return hill.Marker{}, err
	}
	c.layout(ctx, "drag", func() { c.engine.BeginDrag(m.ID) })
	return m, nil
}

// MoveTo moves the dragged marker to a domain position.
func (c *Chart) MoveTo(ctx context.Context, position float64) (hill.Marker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.engine.Dragging()
	if !ok {
		return hill.Marker{}, errors.New(errors.ErrCodeInvalidInput, "no drag in progress")
	}
	c.layout(ctx, "move", func() { c.engine.MoveTo(position) })
	m, _ := c.engine.Marker(id)
	return m, nil
}

// Drop ends the drag of the marker matching ref and saves.
func (c *Chart) Drop(ctx context.Context, ref string) (hill.Marker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.lookup(ref)
	if err != nil {
		return hill.Marker{}, err
	}
	c.layout(ctx, "drop", func() { c.engine.EndDrag(m.ID) })
	m, _ = c.engine.Marker(m.ID)
	return m, c.save(ctx)
}

// Move runs a full drag of the marker matching ref and saves.
func (c *Chart) Move(ctx context.Context, ref string, position float64) (hill.Marker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.lookup(ref)
	if err != nil {
		return hill.Marker{}, err
	}
	c.layout(ctx, "move", func() { c.engine.Move(m.ID, position) })
	m, _ = c.engine.Marker(m.ID)
	return m, c.save(ctx)
}

// MoveAt is Move with a progress fraction.
func (c *Chart) MoveAt(ctx context.Context, ref string, progress float64) (hill.Marker, error) {
	if err := errors.ValidateProgress(progress); err != nil {
		return hill.Marker{}, err
	}
	return c.Move(ctx, ref, c.engine.Curve().PositionAt(progress))
}

// Nudge shifts the label of the marker matching ref and saves.
func (c *Chart) Nudge(ctx context.Context, ref string, delta float64) (hill.Marker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.lookup(ref)
	if err != nil {
		return hill.Marker{}, err
	}
	c.layout(ctx, "nudge", func() { c.engine.Nudge(m.ID, delta) })
	m, _ = c.engine.Marker(m.ID)
	return m, c.save(ctx)
}

// Clear removes every marker and saves. It returns the number removed.
func (c *Chart) Clear(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	c.layout(ctx, "clear", func() { n = c.engine.Clear() })
	return n, c.save(ctx)
}

// Settle runs a layout pass without changing markers, so alignment memory
// decays for pairs that no longer overlap.
func (c *Chart) Settle(ctx context.Context) hill.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	var f hill.Frame
	c.layout(ctx, "settle", func() { f = c.engine.Relayout() })
	return f
}

// lookup resolves an exact id first, then a unique prefix.
func (c *Chart) lookup(ref string) (hill.Marker, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return hill.Marker{}, errors.New(errors.ErrCodeInvalidInput, "marker id cannot be empty")
	}
	if m, ok := c.engine.Marker(ref); ok {
		return m, nil
	}

	var found []hill.Marker
	for _, m := range c.engine.Markers() {
		if strings.HasPrefix(m.ID, ref) {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		return hill.Marker{}, errors.New(errors.ErrCodeMarkerNotFound, "no marker matches %q", ref)
	case 1:
		return found[0], nil
	default:
		ids := make([]string, len(found))
		for i, m := range found {
			ids[i] = m.ID
		}
		return hill.Marker{}, errors.New(errors.ErrCodeAmbiguousID, "%q matches %d markers: %s", ref, len(found), strings.Join(ids, ", "))
	}
}

func (c *Chart) layout(ctx context.Context, op string, fn func()) {
	start := time.Now()
	fn()
	observability.Chart().OnLayout(ctx, op, c.engine.Len(), time.Since(start))
}

// save persists the markers. The in-memory chart keeps the change even
// when the store fails.
func (c *Chart) save(ctx context.Context) error {
	markers := c.engine.Markers()
	start := time.Now()
	err := c.store.Save(ctx, c.name, store.NewDocument(markers))
	observability.Chart().OnSave(ctx, c.store.Name(), c.name, len(markers), time.Since(start), err)
	if err != nil {
		c.logger.Error("save failed", "chart", c.name, "store", c.store.Name(), "err", err)
		return err
	}
	return nil
}
