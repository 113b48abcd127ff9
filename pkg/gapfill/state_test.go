package gapfill

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/gapfill/pkg/core"
)

func TestClassify(t *testing.T) {
	window := core.Range{Min: 5, Max: 6}
	prev := core.Point{RT: 4.8, Intensity: 1000}

	tests := []struct {
		name      string
		rt        float64
		intensity float64
		want      Continuity
	}{
		{"rising within tolerance", 4.9, 600, Rising},
		{"rising at exact lower bound", 4.9, 500, Rising},
		{"rising below lower bound", 4.9, 499.99, Broken},
		{"inside accepts zero", 5.5, 0, Inside},
		{"inside accepts jump", 5.5, 1e9, Inside},
		{"inside at lower edge", 5, 0, Inside},
		{"inside at upper edge", 6, 0, Inside},
		{"falling within tolerance", 6.1, 1200, Falling},
		{"falling at exact upper bound", 6.1, 1500, Falling},
		{"falling above upper bound", 6.1, 1500.01, Broken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := core.Point{RT: tt.rt, Intensity: tt.intensity}
			got := Classify(window, 0.5, prev, p)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.want != Broken, got.Accepted())
		})
	}
}

func TestEnumStrings(t *testing.T) {
	require.Equal(t, "accumulating", StateAccumulating.String())
	require.Equal(t, "finalized", StateFinalized.String())
	require.Equal(t, "below_noise", OutcomeBelowNoise.String())
	require.Equal(t, "broken", Broken.String())
}
