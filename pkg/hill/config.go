package hill

import (
	"fmt"

	"github.com/matzehuels/hillchart/pkg/hill/curve"
	"github.com/matzehuels/hillchart/pkg/hill/guide"
)

// Layout defaults.
const (
	// DefaultDotRadius is the radius of a rendered marker.
	DefaultDotRadius = 10.0

	// DefaultStackOffset is the vertical distance between stacked markers.
	DefaultStackOffset = 30.0

	// DefaultTieEpsilon is the distance under which two raw positions are
	// treated as a tie when ordering markers.
	DefaultTieEpsilon = 5.0

	// DefaultOverlapX and DefaultOverlapY are the overlap thresholds as
	// multiples of the dot radius.
	DefaultOverlapX = 10.0
	DefaultOverlapY = 1.5

	// DefaultSamples is the number of curve segments sampled for drawing.
	DefaultSamples = 50

	// DefaultGuideStart and DefaultGuideEnd bound the vertical guide line.
	DefaultGuideStart = 80.0
	DefaultGuideEnd   = 500.0
)

// Config holds the engine geometry and layout tuning.
type Config struct {
	Curve curve.Curve `json:"curve" toml:"curve"`

	DotRadius   float64 `json:"dot_radius" toml:"dot_radius"`
	StackOffset float64 `json:"stack_offset" toml:"stack_offset"`
	TieEpsilon  float64 `json:"tie_epsilon" toml:"tie_epsilon"`
	OverlapX    float64 `json:"overlap_x" toml:"overlap_x"`
	OverlapY    float64 `json:"overlap_y" toml:"overlap_y"`
	Samples     int     `json:"samples" toml:"samples"`

	GuideGap   float64 `json:"guide_gap" toml:"guide_gap"`
	GuideStart float64 `json:"guide_start" toml:"guide_start"`
	GuideEnd   float64 `json:"guide_end" toml:"guide_end"`
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() Config {
	return Config{
		Curve:       curve.Default(),
		DotRadius:   DefaultDotRadius,
		StackOffset: DefaultStackOffset,
		TieEpsilon:  DefaultTieEpsilon,
		OverlapX:    DefaultOverlapX,
		OverlapY:    DefaultOverlapY,
		Samples:     DefaultSamples,
		GuideGap:    guide.DefaultGap,
		GuideStart:  DefaultGuideStart,
		GuideEnd:    DefaultGuideEnd,
	}
}

// Validate checks that the configuration can drive a layout.
func (c Config) Validate() error {
	if err := c.Curve.Validate(); err != nil {
		return fmt.Errorf("curve: %w", err)
	}
	switch {
	case c.DotRadius <= 0:
		return fmt.Errorf("dot radius must be positive, got %g", c.DotRadius)
	case c.StackOffset <= 0:
		return fmt.Errorf("stack offset must be positive, got %g", c.StackOffset)
	case c.TieEpsilon < 0:
		return fmt.Errorf("tie epsilon must not be negative, got %g", c.TieEpsilon)
	case c.OverlapX <= 0 || c.OverlapY <= 0:
		return fmt.Errorf("overlap factors must be positive, got %g and %g", c.OverlapX, c.OverlapY)
	case c.Samples < 1:
		return fmt.Errorf("samples must be at least 1, got %d", c.Samples)
	case c.GuideGap < 0:
		return fmt.Errorf("guide gap must not be negative, got %g", c.GuideGap)
	case c.GuideEnd <= c.GuideStart:
		return fmt.Errorf("guide end (%g) must be below guide start (%g)", c.GuideEnd, c.GuideStart)
	}
	return nil
}

// Resolver returns the resolver configured by c.
func (c Config) Resolver() Resolver {
	return Resolver{
		Curve:       c.Curve,
		DotRadius:   c.DotRadius,
		StackOffset: c.StackOffset,
		TieEpsilon:  c.TieEpsilon,
		OverlapX:    c.OverlapX,
		OverlapY:    c.OverlapY,
	}
}

// Guide returns the guide line configured by c, placed at the domain
// midpoint.
func (c Config) Guide() guide.Line {
	return guide.Line{
		X:     c.Curve.Midpoint(),
		Start: c.GuideStart,
		End:   c.GuideEnd,
		Gap:   c.GuideGap,
	}
}
