// Package curve defines the hill that milestones are placed on.
//
// A [Curve] maps a domain position (the horizontal coordinate of a milestone)
// to a vertical coordinate using a Gaussian bump. The domain is linearly
// mapped to progress in [0, 1]; the bump peaks at Mean (in progress units)
// and its steepness is controlled by StdDev.
//
// Coordinates follow SVG conventions: y grows downwards, so the peak of the
// hill is the point closest to TopY and both feet sit near BottomY.
//
//	c := curve.Default()
//	y := c.HeightAt(c.Peak()) // == c.TopY
//	for p := range c.Sample(50) {
//	    fmt.Println(p.X, p.Y)
//	}
package curve

import (
	"fmt"
	"iter"
	"math"
)

// Default geometry, matching the legacy browser chart.
const (
	DefaultDomainStart = 250.0
	DefaultDomainEnd   = 950.0
	DefaultTopY        = 180.0
	DefaultBottomY     = 480.0
	DefaultMean        = 0.5
	DefaultStdDev      = 0.15
)

// Point is a sampled position on the curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is the reference hill. The zero value is not usable; start from
// [Default] or fill every field and call [Curve.Validate].
type Curve struct {
	DomainStart float64 `json:"domain_start" toml:"domain_start"`
	DomainEnd   float64 `json:"domain_end" toml:"domain_end"`
	TopY        float64 `json:"top_y" toml:"top_y"`
	BottomY     float64 `json:"bottom_y" toml:"bottom_y"`
	Mean        float64 `json:"mean" toml:"mean"`
	StdDev      float64 `json:"std_dev" toml:"std_dev"`
}

// Default returns the curve used when no configuration is given.
func Default() Curve {
	return Curve{
		DomainStart: DefaultDomainStart,
		DomainEnd:   DefaultDomainEnd,
		TopY:        DefaultTopY,
		BottomY:     DefaultBottomY,
		Mean:        DefaultMean,
		StdDev:      DefaultStdDev,
	}
}

// Validate reports whether the curve describes a usable hill.
func (c Curve) Validate() error {
	switch {
	case !(c.DomainEnd > c.DomainStart):
		return fmt.Errorf("domain end (%g) must be greater than domain start (%g)", c.DomainEnd, c.DomainStart)
	case !(c.BottomY > c.TopY):
		return fmt.Errorf("bottom y (%g) must be greater than top y (%g)", c.BottomY, c.TopY)
	case !(c.StdDev > 0):
		return fmt.Errorf("std dev must be positive, got %g", c.StdDev)
	case math.IsNaN(c.Mean) || math.IsInf(c.Mean, 0):
		return fmt.Errorf("mean must be finite, got %g", c.Mean)
	}
	return nil
}

// Width returns the extent of the domain.
func (c Curve) Width() float64 { return c.DomainEnd - c.DomainStart }

// Midpoint returns the domain position halfway between start and end.
func (c Curve) Midpoint() float64 { return (c.DomainStart + c.DomainEnd) / 2 }

// Peak returns the domain position at which HeightAt is closest to TopY.
func (c Curve) Peak() float64 { return c.DomainStart + c.Mean*c.Width() }

// Clamp limits position to the closed domain. NaN clamps to DomainStart.
func (c Curve) Clamp(position float64) float64 {
	if math.IsNaN(position) {
		return c.DomainStart
	}
	return max(c.DomainStart, min(c.DomainEnd, position))
}

// Progress maps a domain position to [0, 1].
func (c Curve) Progress(position float64) float64 {
	return (position - c.DomainStart) / c.Width()
}

// PositionAt maps progress in [0, 1] back to a domain position. The result
// is clamped to the domain.
func (c Curve) PositionAt(progress float64) float64 {
	return c.Clamp(c.DomainStart + progress*c.Width())
}

// HeightAt returns the vertical coordinate of the curve at position.
// Positions outside the domain give undefined (but finite) results;
// callers clamp first.
func (c Curve) HeightAt(position float64) float64 {
	u := c.Progress(position)
	z := (u - c.Mean) / c.StdDev
	v := math.Exp(-0.5 * z * z)
	return c.BottomY - (c.BottomY-c.TopY)*v
}

// Sample yields n+1 evenly spaced points from DomainStart to DomainEnd.
// The sequence holds no state between iterations and can be ranged over
// any number of times. n < 1 is treated as 1.
func (c Curve) Sample(n int) iter.Seq[Point] {
	n = max(1, n)
	return func(yield func(Point) bool) {
		for i := 0; i <= n; i++ {
			x := c.DomainStart + c.Width()*float64(i)/float64(n)
			if i == n {
				x = c.DomainEnd
			}
			if !yield(Point{X: x, Y: c.HeightAt(x)}) {
				return
			}
		}
	}
}
