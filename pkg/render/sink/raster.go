package sink

import (
	"context"
	"time"

	"github.com/matzehuels/hillchart/pkg/cache"
	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/observability"
	"github.com/matzehuels/hillchart/pkg/render"
)

// RasterOption configures PNG and PDF rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	svgOpts []SVGOption
	scale   float64
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
}

// WithSVGOptions passes options through to the underlying SVG renderer.
func WithSVGOptions(opts ...SVGOption) RasterOption {
	return func(r *rasterRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) RasterOption {
	return func(r *rasterRenderer) { r.scale = s }
}

// WithCache stores converted output in c, keyed by the SVG it came from.
// A nil keyer uses [cache.NewDefaultKeyer].
func WithCache(c cache.Cache, k cache.Keyer) RasterOption {
	return func(r *rasterRenderer) {
		r.cache = c
		if k != nil {
			r.keyer = k
		}
	}
}

func newRasterRenderer(opts ...RasterOption) rasterRenderer {
	r := rasterRenderer{
		scale: 2.0,
		cache: cache.NewNullCache(),
		keyer: cache.NewDefaultKeyer(),
		ttl:   cache.ArtifactTTL,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderPNG renders the frame as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, f hill.Frame, opts ...RasterOption) ([]byte, error) {
	r := newRasterRenderer(opts...)
	svg := RenderSVG(f, append([]SVGOption{WithBackground("white")}, r.svgOpts...)...)
	key := r.keyer.ArtifactKey(cache.Hash(svg), cache.ArtifactKeyOpts{Format: "png", Scale: r.scale})
	return r.cached(ctx, key, func() ([]byte, error) {
		return render.ToPNG(ctx, svg, r.scale)
	})
}

// RenderPDF renders the frame as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, f hill.Frame, opts ...RasterOption) ([]byte, error) {
	r := newRasterRenderer(opts...)
	svg := RenderSVG(f, r.svgOpts...)
	key := r.keyer.ArtifactKey(cache.Hash(svg), cache.ArtifactKeyOpts{Format: "pdf"})
	return r.cached(ctx, key, func() ([]byte, error) {
		return render.ToPDF(ctx, svg)
	})
}

// cached returns the entry for key or runs convert and stores its result.
// Cache failures are not fatal: the conversion result is still returned.
func (r *rasterRenderer) cached(ctx context.Context, key string, convert func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()
	if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, "artifact")
		return data, nil
	}
	hooks.OnCacheMiss(ctx, "artifact")

	data, err := convert()
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err == nil {
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return data, nil
}
