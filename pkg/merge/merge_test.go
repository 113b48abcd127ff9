package merge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/gapfill/pkg/core"
)

func ptr(v float64) *float64 { return &v }

func tolerances(mzAbs float64) core.Tolerances {
	return core.Tolerances{
		MZ:             core.MZTolerance{Abs: mzAbs},
		RTWindow:       0.1,
		MobilityWindow: 0.02,
		ShapeTolerance: 0.1,
	}
}

func TestMergeCloseMasses(t *testing.T) {
	targets := []core.Target{
		{MZ: 100.0000, Label: "a"},
		{MZ: 100.0005, Label: "b"},
	}

	tests := []struct {
		name         string
		mzTol        float64
		wantClusters int
	}{
		{"wide tolerance merges", 0.001, 1},
		{"narrow tolerance keeps apart", 0.0001, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clusters := Merge(targets, tolerances(tt.mzTol))
			require.Len(t, clusters, tt.wantClusters)
		})
	}
}

func TestMergeEmptyAndSingle(t *testing.T) {
	require.Empty(t, Merge(nil, tolerances(0.01)))

	clusters := Merge([]core.Target{{MZ: 250, Label: "only"}}, tolerances(0.01))
	require.Len(t, clusters, 1)
	require.Equal(t, 1, clusters[0].ID)
	require.Equal(t, []string{"only"}, clusters[0].Labels())
}

func TestMergeRequiresEveryDimension(t *testing.T) {
	tests := []struct {
		name         string
		targets      []core.Target
		wantClusters int
	}{
		{
			name: "same mass, overlapping RT",
			targets: []core.Target{
				{MZ: 300, RT: ptr(5.0), Label: "a"},
				{MZ: 300, RT: ptr(5.15), Label: "b"},
			},
			wantClusters: 1,
		},
		{
			name: "same mass, distant RT",
			targets: []core.Target{
				{MZ: 300, RT: ptr(5.0), Label: "a"},
				{MZ: 300, RT: ptr(7.0), Label: "b"},
			},
			wantClusters: 2,
		},
		{
			name: "same mass and RT, distant mobility",
			targets: []core.Target{
				{MZ: 300, RT: ptr(5.0), Mobility: ptr(0.8), Label: "a"},
				{MZ: 300, RT: ptr(5.0), Mobility: ptr(1.1), Label: "b"},
			},
			wantClusters: 2,
		},
		{
			name: "RT given on one target only",
			targets: []core.Target{
				{MZ: 300, RT: ptr(5.0), Label: "a"},
				{MZ: 300, Label: "b"},
			},
			wantClusters: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, Merge(tt.targets, tolerances(0.01)), tt.wantClusters)
		})
	}
}

func TestMergeReachesBackToEarlierCluster(t *testing.T) {
	// "b" fails against the first cluster before "d" widens its RT window,
	// so "b" seeds its own cluster which must then be folded back.
	targets := []core.Target{
		{MZ: 100.015, RT: ptr(5.15), Label: "d"},
		{MZ: 100.005, RT: ptr(5.3), Label: "b"},
		{MZ: 100.000, RT: ptr(5.0), Label: "e"},
	}

	clusters := Merge(targets, tolerances(0.01))
	require.Len(t, clusters, 1)
	require.Equal(t, []string{"e", "d", "b"}, clusters[0].Labels())
	require.InDelta(t, 4.9, clusters[0].Window.RT.Min, 1e-9)
	require.InDelta(t, 5.4, clusters[0].Window.RT.Max, 1e-9)
}

func TestMergePartitionsAndIsDeterministic(t *testing.T) {
	var targets []core.Target
	for i := 0; i < 60; i++ {
		targets = append(targets, core.Target{
			MZ:    200 + float64(i%20)*0.004,
			RT:    ptr(float64(i%3) * 0.15),
			Label: fmt.Sprintf("t%02d", i),
		})
	}

	first := Merge(targets, tolerances(0.005))
	second := Merge(targets, tolerances(0.005))
	require.Equal(t, first, second)

	seen := make(map[string]int)
	lastLowest := 0.0
	for i, c := range first {
		require.Equal(t, i+1, c.ID)
		require.NotEmpty(t, c.Targets)
		require.GreaterOrEqual(t, c.LowestMZ(), lastLowest)
		lastLowest = c.LowestMZ()
		for _, tg := range c.Targets {
			seen[tg.Label]++
			require.True(t, c.Window.Covers(tg.Window(tolerances(0.005))))
		}
	}
	require.Len(t, seen, len(targets))
	for label, n := range seen {
		require.Equal(t, 1, n, "target %s", label)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	targets := []core.Target{{MZ: 500, Label: "z"}, {MZ: 100, Label: "a"}}
	Merge(targets, tolerances(0.01))
	require.Equal(t, "z", targets[0].Label)
}
