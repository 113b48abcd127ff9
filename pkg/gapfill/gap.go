// Package gapfill reconstructs chromatographic peaks at known target
// coordinates from a time-ordered scan stream.
//
// One Gap is built per target cluster. Each Gap consumes every scan of a raw
// file exactly once, in retention time order, keeping a single open candidate
// peak and the tallest peak found so far. Finalize turns the tallest peak into
// a Feature when its apex clears the noise floor.
//
// A Gap is not safe for concurrent use. Independent gaps share nothing
// mutable and may run on separate goroutines over the same scans.
package gapfill

import (
	"math"
	"sort"

	"github.com/ChrisMcGann/gapfill/pkg/core"
)

// Accumulator is the streaming contract shared by Gap and MobilityGap.
type Accumulator interface {
	OfferScan(scan *core.Scan)
	Finalize() (core.Feature, bool)
	Outcome() Outcome
}

type fragmentRef struct {
	scan int
	rt   float64
}

// Gap is the per-cluster reconstruction state machine.
type Gap struct {
	cluster *core.Cluster
	tol     core.Tolerances
	mzRange core.Range
	rtRange core.Range

	// minRun > 1 requires an apex to sit inside that many consecutive
	// non-zero points.
	minRun   int
	mobility bool

	state      State
	outcome    Outcome
	current    []core.Point
	best       []core.Point
	bestHeight float64
	fragments  []fragmentRef
}

// NewGap creates a gap searching the cluster's window. A cluster without an
// RT window is searched across the whole run.
func NewGap(cluster *core.Cluster, tol core.Tolerances) *Gap {
	rtRange := core.Range{Min: math.Inf(-1), Max: math.Inf(1)}
	if cluster.Window.RT != nil {
		rtRange = *cluster.Window.RT
	}
	return &Gap{
		cluster: cluster,
		tol:     tol,
		mzRange: cluster.Window.MZ,
		rtRange: rtRange,
	}
}

// State returns the current lifecycle stage.
func (g *Gap) State() State { return g.state }

// Outcome returns the result classification, OutcomePending before Finalize.
func (g *Gap) Outcome() Outcome { return g.outcome }

// Cluster returns the cluster the gap searches for.
func (g *Gap) Cluster() *core.Cluster { return g.cluster }

// OfferScan consumes the next scan. Scans must arrive in non-decreasing RT
// order with peaks sorted by m/z. Fragment scans are only recorded for MS2
// association.
func (g *Gap) OfferScan(scan *core.Scan) {
	if !g.accepting() {
		return
	}
	if scan.MSLevel > 1 {
		g.noteFragment(scan)
		return
	}
	p := samplePoint(g.windowPeaks(scan.Peaks), g.mzRange)
	p.Scan, p.RT = scan.Number, scan.RT
	g.offerPoint(p)
}

func (g *Gap) accepting() bool {
	return g.state != StateDone && g.state != StateFinalized
}

func (g *Gap) noteFragment(scan *core.Scan) {
	if g.mzRange.Contains(scan.PrecursorMZ) {
		g.fragments = append(g.fragments, fragmentRef{scan: scan.Number, rt: scan.RT})
	}
}

// windowPeaks returns the sub-slice of m/z sorted peaks inside the m/z window.
func (g *Gap) windowPeaks(peaks []core.Peak) []core.Peak {
	lo := sort.Search(len(peaks), func(i int) bool { return peaks[i].MZ >= g.mzRange.Min })
	hi := lo
	for hi < len(peaks) && peaks[hi].MZ <= g.mzRange.Max {
		hi++
	}
	return peaks[lo:hi]
}

// samplePoint picks the most intense peak, or a zero-intensity point at the
// window center when there is none.
func samplePoint(peaks []core.Peak, mzRange core.Range) core.Point {
	p := core.Point{MZ: mzRange.Center()}
	found := false
	for _, pk := range peaks {
		if !found || pk.Intensity > p.Intensity {
			p.MZ, p.Intensity, p.Mobility = pk.MZ, pk.Intensity, pk.Mobility
			found = true
		}
	}
	return p
}

func (g *Gap) offerPoint(p core.Point) {
	if g.current == nil {
		switch {
		case p.RT < g.rtRange.Min:
			return
		case p.RT > g.rtRange.Max:
			g.state = StateDone
			return
		}
		g.current = []core.Point{p}
		g.state = StateAccumulating
		return
	}

	last := &g.current[len(g.current)-1]
	if last.Scan == p.Scan && last.RT == p.RT {
		if p.Intensity > last.Intensity {
			*last = p
		}
		return
	}

	if !Classify(g.rtRange, g.tol.ShapeTolerance, *last, p).Accepted() {
		g.closeCandidate()
		if p.RT > g.rtRange.Max {
			g.state = StateDone
		}
		return
	}
	g.current = append(g.current, p)
}

// closeCandidate evaluates and discards the open candidate.
func (g *Gap) closeCandidate() {
	g.state = StateEvaluating
	g.evaluate(g.current)
	g.current = nil
	g.state = StateAccumulating
}

// evaluate looks for the tallest interior local maximum inside the RT window,
// trims the candidate around it and keeps it if it beats the best so far.
func (g *Gap) evaluate(points []core.Point) {
	apex, height := -1, 0.0
	for i := 1; i < len(points)-1; i++ {
		p := points[i]
		if p.Intensity <= 0 || !g.rtRange.Contains(p.RT) {
			continue
		}
		if p.Intensity < points[i-1].Intensity || p.Intensity < points[i+1].Intensity {
			continue
		}
		if g.minRun > 1 && runLength(points, i) < g.minRun {
			continue
		}
		if p.Intensity > height {
			apex, height = i, p.Intensity
		}
	}
	if apex < 0 {
		return
	}

	start, end := peakBounds(points, apex, g.tol.ShapeTolerance)
	if g.best == nil || height > g.bestHeight {
		g.best = append([]core.Point(nil), points[start:end+1]...)
		g.bestHeight = height
	}
}

// peakBounds grows [start, end] outward from apex down both flanks. Growth
// stops before a point that rises above the last accepted point by more than
// shapeTol, or after taking a zero-intensity point.
func peakBounds(points []core.Point, apex int, shapeTol float64) (int, int) {
	rises := func(next, accepted core.Point) bool {
		return accepted.Intensity < (1-shapeTol)*next.Intensity
	}

	start := apex
	for start > 0 && !rises(points[start-1], points[start]) {
		start--
		if points[start].Intensity == 0 {
			break
		}
	}
	end := apex
	for end < len(points)-1 && !rises(points[end+1], points[end]) {
		end++
		if points[end].Intensity == 0 {
			break
		}
	}
	return start, end
}

// runLength counts the consecutive non-zero points around index i.
func runLength(points []core.Point, i int) int {
	lo, hi := i, i
	for lo > 0 && points[lo-1].Intensity > 0 {
		lo--
	}
	for hi < len(points)-1 && points[hi+1].Intensity > 0 {
		hi++
	}
	return hi - lo + 1
}

// Finalize flushes the open candidate and synthesizes the feature. It returns
// false when no peak was found, the apex is below the noise floor, or the gap
// was already finalized.
func (g *Gap) Finalize() (core.Feature, bool) {
	if g.state == StateFinalized {
		return core.Feature{}, false
	}
	if g.current != nil {
		g.closeCandidate()
	}
	g.state = StateFinalized

	if g.best == nil {
		g.outcome = OutcomeNoCandidate
		return core.Feature{}, false
	}

	f := Synthesize(g.best, g.cluster.Labels(), g.mobility)
	if f.Height < g.tol.NoiseFloor {
		g.outcome = OutcomeBelowNoise
		return core.Feature{}, false
	}

	for _, fr := range g.fragments {
		if f.RTRange.Contains(fr.rt) {
			f.MS2Scans = append(f.MS2Scans, fr.scan)
		}
	}
	g.outcome = OutcomeFeature
	return f, true
}
