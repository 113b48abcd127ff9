package gapfill

import "github.com/ChrisMcGann/gapfill/pkg/core"

// State is the lifecycle stage of a gap.
type State int

const (
	// StateEmpty: no scan inside the RT window has been seen yet.
	StateEmpty State = iota
	// StateAccumulating: inside the RT window. A candidate is open, or the
	// next in-window point opens one.
	StateAccumulating
	// StateEvaluating: a closed candidate is being searched for a peak.
	StateEvaluating
	// StateDone: past the RT window with no open candidate; further scans
	// cannot change the result.
	StateDone
	// StateFinalized: Finalize has run.
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAccumulating:
		return "accumulating"
	case StateEvaluating:
		return "evaluating"
	case StateDone:
		return "done"
	case StateFinalized:
		return "finalized"
	}
	return "unknown"
}

// Outcome records why a finalized gap did or did not produce a feature.
type Outcome int

const (
	OutcomePending     Outcome = iota // not finalized yet
	OutcomeFeature                    // a feature was produced
	OutcomeNoCandidate                // no local maximum inside the RT window
	OutcomeBelowNoise                 // best apex below the noise floor
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeFeature:
		return "feature"
	case OutcomeNoCandidate:
		return "no_candidate"
	case OutcomeBelowNoise:
		return "below_noise"
	}
	return "unknown"
}

// Continuity classifies a new point against the last point of the open
// candidate.
type Continuity int

const (
	// Rising: before the RT window and no lower than (1-tol) of the previous intensity.
	Rising Continuity = iota
	// Inside: inside the RT window, always accepted.
	Inside
	// Falling: after the RT window and no higher than (1+tol) of the previous intensity.
	Falling
	// Broken: the point violates the rule of its zone and ends the candidate.
	Broken
)

func (c Continuity) String() string {
	switch c {
	case Rising:
		return "rising"
	case Inside:
		return "inside"
	case Falling:
		return "falling"
	case Broken:
		return "broken"
	}
	return "unknown"
}

// Accepted reports whether the point continues the candidate.
func (c Continuity) Accepted() bool {
	return c != Broken
}

// Classify decides whether p continues a candidate whose last point is prev.
func Classify(rtRange core.Range, shapeTol float64, prev, p core.Point) Continuity {
	switch {
	case p.RT < rtRange.Min:
		if p.Intensity >= (1-shapeTol)*prev.Intensity {
			return Rising
		}
	case p.RT > rtRange.Max:
		if p.Intensity <= (1+shapeTol)*prev.Intensity {
			return Falling
		}
	default:
		return Inside
	}
	return Broken
}
