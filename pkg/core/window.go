package core

import (
	"fmt"
	"math"
	"strings"
)

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

// NewRange returns the range spanning a and b in either order.
func NewRange(a, b float64) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Min: a, Max: b}
}

// RangeAround returns [center-halfWidth, center+halfWidth].
func RangeAround(center, halfWidth float64) Range {
	return NewRange(center-halfWidth, center+halfWidth)
}

// Contains reports whether v lies inside the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Overlaps reports whether the two ranges share at least one value.
func (r Range) Overlaps(o Range) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

// Span returns the smallest range containing both r and o.
func (r Range) Span(o Range) Range {
	return Range{Min: math.Min(r.Min, o.Min), Max: math.Max(r.Max, o.Max)}
}

// Covers reports whether o lies entirely inside r.
func (r Range) Covers(o Range) bool {
	return r.Min <= o.Min && r.Max >= o.Max
}

// Center returns the midpoint of the range.
func (r Range) Center() float64 {
	return (r.Min + r.Max) / 2
}

// Width returns Max - Min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

func (r Range) String() string {
	return fmt.Sprintf("[%.6f, %.6f]", r.Min, r.Max)
}

// MZTolerance combines an absolute and a relative (ppm) m/z tolerance. The
// effective tolerance at a given m/z is the larger of the two.
type MZTolerance struct {
	Abs float64 // absolute tolerance in m/z units
	PPM float64 // relative tolerance in parts per million
}

// At returns the effective tolerance at mz.
func (t MZTolerance) At(mz float64) float64 {
	return math.Max(t.Abs, mz*t.PPM*1e-6)
}

// Window returns the tolerance window centered on mz.
func (t MZTolerance) Window(mz float64) Range {
	return RangeAround(mz, t.At(mz))
}

// Tolerances holds every tolerance a gap-fill run is configured with. A single
// value is shared read-only by all clusters and gaps of a run.
type Tolerances struct {
	MZ             MZTolerance
	RTWindow       float64 // half width of the retention time window, minutes
	MobilityWindow float64 // half width of the mobility window
	ShapeTolerance float64 // allowed fractional intensity change between consecutive scans
	NoiseFloor     float64 // minimum apex height of a reported feature
}

// Validate checks that all tolerances are usable.
func (t Tolerances) Validate() error {
	var errs []string

	if t.MZ.Abs < 0 || t.MZ.PPM < 0 {
		errs = append(errs, "m/z tolerance must be non-negative")
	}
	if t.MZ.Abs == 0 && t.MZ.PPM == 0 {
		errs = append(errs, "m/z tolerance must be positive")
	}
	if t.RTWindow < 0 {
		errs = append(errs, "retention time window must be non-negative")
	}
	if t.MobilityWindow < 0 {
		errs = append(errs, "mobility window must be non-negative")
	}
	if t.ShapeTolerance < 0 || t.ShapeTolerance >= 1 {
		errs = append(errs, "shape tolerance must be in [0, 1)")
	}
	if t.NoiseFloor < 0 {
		errs = append(errs, "noise floor must be non-negative")
	}
	for _, v := range []float64{t.MZ.Abs, t.MZ.PPM, t.RTWindow, t.MobilityWindow, t.ShapeTolerance, t.NoiseFloor} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, "tolerances must be finite")
			break
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Field: "Tolerances", Message: strings.Join(errs, "; ")}
	}
	return nil
}

// Window is the search region of a target or cluster. A nil RT or Mobility
// range means the dimension was not specified.
type Window struct {
	MZ       Range
	RT       *Range
	Mobility *Range
}

// Compatible reports whether two windows describe overlapping search regions.
// m/z must always overlap. RT and mobility must either be unspecified on both
// sides, or specified on both sides and overlapping.
func (w Window) Compatible(o Window) bool {
	if !w.MZ.Overlaps(o.MZ) {
		return false
	}
	return optionalOverlap(w.RT, o.RT) && optionalOverlap(w.Mobility, o.Mobility)
}

func optionalOverlap(a, b *Range) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Overlaps(*b)
}

// Span returns the smallest window containing both w and o.
func (w Window) Span(o Window) Window {
	return Window{
		MZ:       w.MZ.Span(o.MZ),
		RT:       optionalSpan(w.RT, o.RT),
		Mobility: optionalSpan(w.Mobility, o.Mobility),
	}
}

// Covers reports whether o lies entirely inside w in every specified dimension.
func (w Window) Covers(o Window) bool {
	if !w.MZ.Covers(o.MZ) {
		return false
	}
	if o.RT != nil && (w.RT == nil || !w.RT.Covers(*o.RT)) {
		return false
	}
	if o.Mobility != nil && (w.Mobility == nil || !w.Mobility.Covers(*o.Mobility)) {
		return false
	}
	return true
}

func optionalSpan(a, b *Range) *Range {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		r := *b
		return &r
	case b == nil:
		r := *a
		return &r
	}
	r := a.Span(*b)
	return &r
}
