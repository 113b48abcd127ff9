package gapfill

import (
	"github.com/ChrisMcGann/gapfill/pkg/core"
)

// DefaultMinRunLength is the number of consecutive non-zero frames an apex
// needs in ion mobility data.
const DefaultMinRunLength = 3

// MobilityGap runs the gap state machine over ion mobility frames. Each frame
// contributes the best point across its mobility sub-scans inside the
// mobility window, and a local maximum only counts when it sits inside a run
// of at least minRunLength consecutive non-zero points.
type MobilityGap struct {
	*Gap
	mobilityRange *core.Range
}

// NewMobilityGap creates a mobility-aware gap. minRunLength below 1 selects
// DefaultMinRunLength.
func NewMobilityGap(cluster *core.Cluster, tol core.Tolerances, minRunLength int) *MobilityGap {
	if minRunLength < 1 {
		minRunLength = DefaultMinRunLength
	}
	g := NewGap(cluster, tol)
	g.minRun = minRunLength
	g.mobility = true
	return &MobilityGap{Gap: g, mobilityRange: cluster.Window.Mobility}
}

// OfferScan consumes the next frame.
func (m *MobilityGap) OfferScan(frame *core.Scan) {
	if !m.accepting() {
		return
	}
	if frame.MSLevel > 1 {
		m.noteFragment(frame)
		return
	}

	best := core.Point{MZ: m.mzRange.Center()}
	if m.mobilityRange != nil {
		best.Mobility = m.mobilityRange.Center()
	}

	inWindow := core.Scan{Peaks: m.windowPeaks(frame.Peaks)}
	for _, sub := range inWindow.MobilityScans() {
		if m.mobilityRange != nil && !m.mobilityRange.Contains(sub.Mobility) {
			continue
		}
		p := samplePoint(sub.Peaks, m.mzRange)
		if p.Intensity > best.Intensity {
			best = p
			best.Mobility = sub.Mobility
		}
	}

	best.Scan, best.RT = frame.Number, frame.RT
	m.offerPoint(best)
}
