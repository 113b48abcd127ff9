package gapfill

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/gapfill/pkg/core"
	"github.com/ChrisMcGann/gapfill/pkg/merge"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func twoAnalyteScans() []*core.Scan {
	rts := []float64{4.9, 5.0, 5.05, 5.1, 5.15, 5.2, 7.9, 8.0, 8.05, 8.1, 8.2}
	a := []float64{200, 800, 1500, 1400, 600, 100, 0, 0, 0, 0, 0}
	b := []float64{0, 0, 0, 0, 0, 0, 100, 900, 4000, 3900, 50}

	scans := make([]*core.Scan, len(rts))
	for i, rt := range rts {
		s := &core.Scan{Number: i + 1, RT: rt, MSLevel: 1}
		if a[i] > 0 {
			s.Peaks = append(s.Peaks, core.Peak{MZ: 300.1, Intensity: a[i]})
		}
		if b[i] > 0 {
			s.Peaks = append(s.Peaks, core.Peak{MZ: 412.2, Intensity: b[i]})
		}
		scans[i] = s
	}
	return scans
}

func runTargets() []core.Target {
	return []core.Target{
		{MZ: 412.2, RT: ptr(8.05), Label: "b"},
		{MZ: 300.1, RT: ptr(5.1), Label: "a"},
		{MZ: 300.1005, RT: ptr(5.12), Label: "a-dup"},
		{MZ: 650.3, RT: ptr(6), Label: "absent"},
	}
}

func TestRun(t *testing.T) {
	tol := scenarioTolerances(1000)
	clusters := merge.Merge(runTargets(), tol)
	require.Len(t, clusters, 3)

	results, err := Run(context.Background(), clusters, twoAnalyteScans(), tol, Options{Threads: 4, Logger: quietLogger()})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, []string{"a", "a-dup"}, results[0].Cluster.Labels())
	require.Equal(t, OutcomeFeature, results[0].Outcome)
	require.Equal(t, 1500.0, results[0].Feature.Height)

	require.Equal(t, OutcomeFeature, results[1].Outcome)
	require.Equal(t, 8.05, results[1].Feature.RT)

	require.Equal(t, OutcomeNoCandidate, results[2].Outcome)
	require.Nil(t, results[2].Feature)
}

func TestRunMatchesSequential(t *testing.T) {
	tol := scenarioTolerances(1000)
	clusters := merge.Merge(runTargets(), tol)

	parallel, err := Run(context.Background(), clusters, twoAnalyteScans(), tol, Options{Threads: 8, Logger: quietLogger()})
	require.NoError(t, err)
	sequential, err := Run(context.Background(), clusters, twoAnalyteScans(), tol, Options{Logger: quietLogger()})
	require.NoError(t, err)
	require.Equal(t, sequential, parallel)
}

func TestRunRejectsUnorderedScans(t *testing.T) {
	tol := scenarioTolerances(1000)
	scans := twoAnalyteScans()
	scans[3], scans[4] = scans[4], scans[3]

	_, err := Run(context.Background(), merge.Merge(runTargets(), tol), scans, tol, Options{Logger: quietLogger()})
	require.ErrorIs(t, err, ErrScansNotOrdered)
}

func TestRunRejectsBadTolerances(t *testing.T) {
	tol := scenarioTolerances(1000)
	tol.ShapeTolerance = 2

	var verr *core.ValidationError
	_, err := Run(context.Background(), nil, twoAnalyteScans(), tol, Options{Logger: quietLogger()})
	require.ErrorAs(t, err, &verr)
}

func TestRunCancelled(t *testing.T) {
	tol := scenarioTolerances(1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, merge.Merge(runTargets(), tol), twoAnalyteScans(), tol, Options{Threads: 2, Logger: quietLogger()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewAccumulator(t *testing.T) {
	tol := mobilityTolerances()
	c := mobilityCluster(tol)

	require.IsType(t, &Gap{}, NewAccumulator(c, tol, Options{}))
	require.IsType(t, &MobilityGap{}, NewAccumulator(c, tol, Options{Mobility: true, MinRunLength: 2}))
}
