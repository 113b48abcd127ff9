package gapfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/gapfill/pkg/core"
)

// ErrScansNotOrdered is returned when the scan list goes back in time.
var ErrScansNotOrdered = errors.New("scans are not in retention time order")

// cancelCheckInterval is how many scans a gap consumes between context checks.
const cancelCheckInterval = 256

// Options controls a gap-fill run.
type Options struct {
	Threads      int            // gaps processed concurrently (>=1)
	Mobility     bool           // use MobilityGap instead of Gap
	MinRunLength int            // MobilityGap run length, 0 for the default
	Logger       *logrus.Logger // nil uses the logrus standard logger
}

// Result is the outcome of one cluster.
type Result struct {
	Cluster *core.Cluster
	Feature *core.Feature // nil unless Outcome is OutcomeFeature
	Outcome Outcome
}

// NewAccumulator builds the accumulator type selected by opts.
func NewAccumulator(cluster *core.Cluster, tol core.Tolerances, opts Options) Accumulator {
	if opts.Mobility {
		return NewMobilityGap(cluster, tol, opts.MinRunLength)
	}
	return NewGap(cluster, tol)
}

// CheckScans verifies that every scan is valid and that retention times never
// decrease.
func CheckScans(scans []*core.Scan) error {
	for i, s := range scans {
		if err := s.Validate(); err != nil {
			return err
		}
		if i > 0 && s.RT < scans[i-1].RT {
			return fmt.Errorf("%w: scan %d at %.4f min follows scan %d at %.4f min",
				ErrScansNotOrdered, s.Number, s.RT, scans[i-1].Number, scans[i-1].RT)
		}
	}
	return nil
}

// Run streams the complete scan list through one accumulator per cluster and
// returns one Result per cluster, in cluster order. Clusters are processed on
// up to opts.Threads goroutines. Cancelling ctx stops the run and returns the
// context error.
func Run(ctx context.Context, clusters []*core.Cluster, scans []*core.Scan, tol core.Tolerances, opts Options) ([]Result, error) {
	if err := tol.Validate(); err != nil {
		return nil, err
	}
	if err := CheckScans(scans); err != nil {
		return nil, err
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	results := make([]Result, len(clusters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Threads)

	for i, cluster := range clusters {
		i, cluster := i, cluster
		g.Go(func() error {
			res, err := fillCluster(gctx, cluster, scans, tol, opts)
			if err != nil {
				return err
			}
			results[i] = res
			logger.WithFields(logrus.Fields{
				"cluster": cluster.ID,
				"labels":  cluster.Name(),
				"outcome": res.Outcome.String(),
			}).Debug("gap finalized")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	found := 0
	for _, r := range results {
		if r.Feature != nil {
			found++
		}
	}
	logger.WithFields(logrus.Fields{
		"clusters": len(clusters),
		"scans":    len(scans),
		"features": found,
	}).Info("gap fill complete")

	return results, nil
}

func fillCluster(ctx context.Context, cluster *core.Cluster, scans []*core.Scan, tol core.Tolerances, opts Options) (Result, error) {
	start := time.Now()
	acc := NewAccumulator(cluster, tol, opts)

	for i, s := range scans {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		acc.OfferScan(s)
	}
	scansOfferedTotal.Add(float64(len(scans)))

	res := Result{Cluster: cluster}
	if f, ok := acc.Finalize(); ok {
		res.Feature = &f
	}
	res.Outcome = acc.Outcome()

	gapsTotal.WithLabelValues(res.Outcome.String()).Inc()
	gapDuration.Observe(time.Since(start).Seconds())
	return res, nil
}
