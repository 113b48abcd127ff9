package core

// Point is the sample a gap takes from one scan: the most intense peak inside
// the m/z window, or a zero-intensity point at the window center when the scan
// has no signal there.
type Point struct {
	Scan      int
	MZ        float64
	RT        float64
	Intensity float64
	Mobility  float64
}

// Feature is the quantitative summary of a reconstructed chromatographic peak.
type Feature struct {
	MZ     float64 // mean m/z over the peak's points
	RT     float64 // apex retention time, minutes
	Height float64 // apex intensity
	Area   float64 // trapezoidal area over RT in seconds

	MZRange        Range
	RTRange        Range
	IntensityRange Range

	// Set only for features reconstructed from ion mobility frames.
	Mobility      *float64
	MobilityRange *Range

	RepresentativeScan int
	MS2Scans           []int
	Labels             []string
	Points             []Point
}
