package gapfill

import (
	"github.com/ChrisMcGann/gapfill/pkg/core"
)

// SegmentArea is the trapezoid between two adjacent points, with retention
// times in minutes and the area in intensity·seconds.
func SegmentArea(rt1, rt2, intensity1, intensity2 float64) float64 {
	return (rt2 - rt1) * 60 * (intensity1 + intensity2) / 2
}

// TrapezoidArea integrates intensity over retention time in seconds.
func TrapezoidArea(points []core.Point) float64 {
	area := 0.0
	for i := 1; i < len(points); i++ {
		area += SegmentArea(points[i-1].RT, points[i].RT, points[i-1].Intensity, points[i].Intensity)
	}
	return area
}

// Synthesize summarizes a non-empty, RT-ordered point sequence into a feature.
// The apex is the first point of maximum intensity. Mobility fields are only
// filled when withMobility is set.
func Synthesize(points []core.Point, labels []string, withMobility bool) core.Feature {
	first := points[0]
	f := core.Feature{
		MZRange:        core.Range{Min: first.MZ, Max: first.MZ},
		RTRange:        core.Range{Min: first.RT, Max: first.RT},
		IntensityRange: core.Range{Min: first.Intensity, Max: first.Intensity},
		Labels:         append([]string(nil), labels...),
		Points:         append([]core.Point(nil), points...),
	}
	mobilityRange := core.Range{Min: first.Mobility, Max: first.Mobility}

	apex := 0
	sumMZ := 0.0
	for i, p := range points {
		sumMZ += p.MZ
		if p.Intensity > points[apex].Intensity {
			apex = i
		}
		f.MZRange = f.MZRange.Span(core.Range{Min: p.MZ, Max: p.MZ})
		f.RTRange = f.RTRange.Span(core.Range{Min: p.RT, Max: p.RT})
		f.IntensityRange = f.IntensityRange.Span(core.Range{Min: p.Intensity, Max: p.Intensity})
		mobilityRange = mobilityRange.Span(core.Range{Min: p.Mobility, Max: p.Mobility})
	}

	f.MZ = sumMZ / float64(len(points))
	f.RT = points[apex].RT
	f.Height = points[apex].Intensity
	f.Area = TrapezoidArea(points)
	f.RepresentativeScan = points[apex].Scan

	if withMobility {
		mobility := points[apex].Mobility
		f.Mobility = &mobility
		f.MobilityRange = &mobilityRange
	}
	return f
}
