package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/gapfill/pkg/core"
)

func testScan() *core.Scan {
	return &core.Scan{Number: 1, RT: 1, MSLevel: 1, Peaks: []core.Peak{
		{MZ: 100, Intensity: 10},
		{MZ: 200, Intensity: 0},
		{MZ: 300, Intensity: 1000},
		{MZ: 400, Intensity: 50},
		{MZ: 500, Intensity: 500},
	}}
}

func mzs(s *core.Scan) []float64 {
	out := make([]float64, len(s.Peaks))
	for i, p := range s.Peaks {
		out[i] = p.MZ
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []float64
	}{
		{"no filter drops zeros only", Config{}, []float64{100, 300, 400, 500}},
		{"absolute minimum", Config{MinIntensity: 50}, []float64{300, 400, 500}},
		{"relative cutoff", Config{IntensityCutoff: 10}, []float64{300, 500}},
		{"top n restores m/z order", Config{TopN: 2}, []float64{300, 500}},
		{"combined", Config{MinIntensity: 20, TopN: 1}, []float64{300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := testScan()
			tt.cfg.Apply(scan)
			require.Equal(t, tt.want, mzs(scan))
			require.True(t, scan.ArePeaksSorted())
		})
	}
}

func TestEnabled(t *testing.T) {
	var nilCfg *Config
	require.False(t, nilCfg.Enabled())
	require.False(t, (&Config{}).Enabled())
	require.True(t, (&Config{TopN: 5}).Enabled())
}

func TestRemoveZeroIntensityPeaksEmptyScan(t *testing.T) {
	scan := &core.Scan{}
	RemoveZeroIntensityPeaks(scan)
	require.Empty(t, scan.Peaks)
}
