// Package filter provides scan peak filtering applied before scans reach the
// gap-fill engine.
package filter

import (
	"sort"

	"github.com/ChrisMcGann/gapfill/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	TopN            int     // Keep only top N most intense peaks (0 = no limit)
	IntensityCutoff float64 // Keep only peaks above this % of base peak (0 = no cutoff)
	MinIntensity    float64 // Keep only peaks at or above this absolute intensity (0 = no limit)
}

// Enabled reports whether any filter is configured.
func (c *Config) Enabled() bool {
	return c != nil && (c.TopN > 0 || c.IntensityCutoff > 0 || c.MinIntensity > 0)
}

// Apply applies all configured filters to a scan, leaving peaks sorted by m/z.
func (c *Config) Apply(scan *core.Scan) {
	RemoveZeroIntensityPeaks(scan)

	if c.MinIntensity > 0 {
		keepAbove(scan, c.MinIntensity)
	}

	if c.IntensityCutoff > 0 {
		c.filterByIntensity(scan)
	}

	if c.TopN > 0 {
		c.filterTopN(scan)
	}

	if !scan.ArePeaksSorted() {
		scan.SortPeaks()
	}
}

// filterByIntensity removes peaks below the cutoff percentage of the base peak.
func (c *Config) filterByIntensity(scan *core.Scan) {
	base, ok := scan.BasePeak()
	if !ok {
		return
	}
	keepAbove(scan, (c.IntensityCutoff/100.0)*base.Intensity)
}

// filterTopN keeps only the N most intense peaks
func (c *Config) filterTopN(scan *core.Scan) {
	if len(scan.Peaks) <= c.TopN {
		return
	}

	peaks := make([]core.Peak, len(scan.Peaks))
	copy(peaks, scan.Peaks)

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Intensity > peaks[j].Intensity
	})

	scan.Peaks = peaks[:c.TopN]
}

func keepAbove(scan *core.Scan, threshold float64) {
	filtered := scan.Peaks[:0]
	for _, peak := range scan.Peaks {
		if peak.Intensity >= threshold {
			filtered = append(filtered, peak)
		}
	}
	scan.Peaks = filtered
}

// RemoveZeroIntensityPeaks removes peaks with zero or negative intensity
func RemoveZeroIntensityPeaks(scan *core.Scan) {
	var filtered []core.Peak
	for _, peak := range scan.Peaks {
		if peak.Intensity > 0 {
			filtered = append(filtered, peak)
		}
	}
	scan.Peaks = filtered
}
