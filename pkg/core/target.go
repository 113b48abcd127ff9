package core

import (
	"fmt"
	"math"
	"strings"
)

// Target is one expected compound coordinate from a target list.
type Target struct {
	MZ       float64  // precursor m/z
	RT       *float64 // expected retention time in minutes, nil if unknown
	Mobility *float64 // expected ion mobility, nil if unknown
	Label    string
}

// Validate checks that the target carries usable coordinates.
func (t *Target) Validate() error {
	var errs []string

	if math.IsNaN(t.MZ) || math.IsInf(t.MZ, 0) || t.MZ <= 0 {
		errs = append(errs, "m/z must be a positive number")
	}
	if t.RT != nil && (math.IsNaN(*t.RT) || math.IsInf(*t.RT, 0) || *t.RT < 0) {
		errs = append(errs, "retention time must be a non-negative number")
	}
	if t.Mobility != nil && (math.IsNaN(*t.Mobility) || math.IsInf(*t.Mobility, 0) || *t.Mobility <= 0) {
		errs = append(errs, "mobility must be a positive number")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   fmt.Sprintf("Target %q", t.Label),
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// Window returns the search window of the target under tol.
func (t *Target) Window(tol Tolerances) Window {
	w := Window{MZ: tol.MZ.Window(t.MZ)}
	if t.RT != nil {
		r := RangeAround(*t.RT, tol.RTWindow)
		w.RT = &r
	}
	if t.Mobility != nil {
		r := RangeAround(*t.Mobility, tol.MobilityWindow)
		w.Mobility = &r
	}
	return w
}

// Cluster is a non-empty group of targets believed to be the same analyte. Its
// window only grows as members are added.
type Cluster struct {
	ID      int
	Targets []Target
	Window  Window
}

// NewCluster seeds a cluster with a single target.
func NewCluster(t Target, tol Tolerances) *Cluster {
	return &Cluster{
		Targets: []Target{t},
		Window:  t.Window(tol),
	}
}

// Add appends a target and widens the window to include it.
func (c *Cluster) Add(t Target, tol Tolerances) {
	c.Targets = append(c.Targets, t)
	c.Window = c.Window.Span(t.Window(tol))
}

// Absorb moves every member of o into c.
func (c *Cluster) Absorb(o *Cluster) {
	c.Targets = append(c.Targets, o.Targets...)
	c.Window = c.Window.Span(o.Window)
}

// LowestMZ returns the smallest member m/z.
func (c *Cluster) LowestMZ() float64 {
	lowest := math.Inf(1)
	for _, t := range c.Targets {
		lowest = math.Min(lowest, t.MZ)
	}
	return lowest
}

// Labels returns the member labels in membership order.
func (c *Cluster) Labels() []string {
	labels := make([]string, 0, len(c.Targets))
	for _, t := range c.Targets {
		labels = append(labels, t.Label)
	}
	return labels
}

// Name returns the member labels joined with ";".
func (c *Cluster) Name() string {
	return strings.Join(c.Labels(), ";")
}
