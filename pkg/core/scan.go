// Package core provides the data model shared by the gap-fill engine: targets,
// tolerance windows, clusters, scans and reconstructed features.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Scan is one centroided spectrum from a raw file.
type Scan struct {
	Number      int     // scan number in the raw file
	RT          float64 // retention time in minutes
	MSLevel     int     // 1 for survey scans, 2+ for fragment scans
	PrecursorMZ float64 // isolated precursor m/z, MS2+ only
	Peaks       []Peak  // centroided peaks sorted by m/z
}

// Peak represents a single m/z, intensity pair. Mobility is zero for data
// acquired without ion mobility separation.
type Peak struct {
	MZ        float64
	Intensity float64
	Mobility  float64
}

// MobilityScan is the mobility-resolved sub-scan of a frame.
type MobilityScan struct {
	Mobility float64
	Peaks    []Peak
}

// ValidationError represents an error found during input validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a scan meets all requirements for processing.
func (s *Scan) Validate() error {
	var errs []string

	if math.IsNaN(s.RT) || math.IsInf(s.RT, 0) || s.RT < 0 {
		errs = append(errs, "retention time must be a non-negative number")
	}
	if s.MSLevel < 1 {
		errs = append(errs, "MS level must be positive")
	}
	if s.MSLevel > 1 && s.PrecursorMZ <= 0 {
		errs = append(errs, "fragment scans need a precursor m/z")
	}

	for i, peak := range s.Peaks {
		if math.IsNaN(peak.MZ) || math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
		if math.IsNaN(peak.Mobility) || math.IsInf(peak.Mobility, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid mobility", i))
		}
		if peak.MZ <= 0 {
			errs = append(errs, fmt.Sprintf("peak %d m/z must be positive", i))
		}
		if peak.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}

	if !s.ArePeaksSorted() {
		errs = append(errs, "peaks must be sorted by m/z")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   fmt.Sprintf("Scan %d", s.Number),
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ArePeaksSorted checks if peaks are sorted by m/z in ascending order.
func (s *Scan) ArePeaksSorted() bool {
	for i := 1; i < len(s.Peaks); i++ {
		if s.Peaks[i].MZ < s.Peaks[i-1].MZ {
			return false
		}
	}
	return true
}

// SortPeaks sorts peaks by m/z in ascending order.
func (s *Scan) SortPeaks() {
	sort.SliceStable(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].MZ < s.Peaks[j].MZ
	})
}

// HasMobility reports whether any peak carries a mobility value.
func (s *Scan) HasMobility() bool {
	for _, p := range s.Peaks {
		if p.Mobility != 0 {
			return true
		}
	}
	return false
}

// MobilityScans splits a frame into its mobility-resolved sub-scans, ordered by
// ascending mobility. Peaks inside each sub-scan keep their m/z order.
func (s *Scan) MobilityScans() []MobilityScan {
	index := make(map[float64]int)
	var out []MobilityScan
	for _, p := range s.Peaks {
		i, ok := index[p.Mobility]
		if !ok {
			i = len(out)
			index[p.Mobility] = i
			out = append(out, MobilityScan{Mobility: p.Mobility})
		}
		out[i].Peaks = append(out[i].Peaks, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Mobility < out[j].Mobility
	})
	return out
}

// BasePeak returns the most intense peak, or false for an empty scan.
func (s *Scan) BasePeak() (Peak, bool) {
	if len(s.Peaks) == 0 {
		return Peak{}, false
	}
	best := s.Peaks[0]
	for _, p := range s.Peaks[1:] {
		if p.Intensity > best.Intensity {
			best = p
		}
	}
	return best, true
}
