// Package merge groups target definitions whose tolerance windows overlap into
// non-redundant search clusters, so that each analyte is searched for once.
package merge

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ChrisMcGann/gapfill/pkg/core"
)

// Merger clusters targets under a fixed set of tolerances.
type Merger struct {
	Tolerances core.Tolerances
	Logger     *logrus.Logger
}

// New creates a Merger. A nil logger falls back to the logrus standard logger.
func New(tol core.Tolerances, logger *logrus.Logger) *Merger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Merger{Tolerances: tol, Logger: logger}
}

// Merge clusters targets with a default Merger.
func Merge(targets []core.Target, tol core.Tolerances) []*core.Cluster {
	return New(tol, nil).Merge(targets)
}

// Merge partitions targets into clusters. Every target ends up in exactly one
// cluster. Clusters are returned in ascending order of their lowest member m/z
// and numbered from 1 in that order.
//
// Targets are visited by ascending m/z. Each unvisited target seeds a cluster,
// and the remaining targets up to twice the seed's m/z tolerance away are
// merged into it when their full window (m/z, RT, mobility) is compatible with
// the cluster's current window. A finished cluster may have grown far enough
// to reach an earlier cluster it should belong to, so earlier clusters whose
// lowest member lies inside the screening bound are re-checked, newest first.
func (m *Merger) Merge(targets []core.Target) []*core.Cluster {
	tol := m.Tolerances

	sorted := make([]core.Target, len(targets))
	copy(sorted, targets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MZ < sorted[j].MZ
	})

	used := make([]bool, len(sorted))
	var clusters []*core.Cluster

	for i, seed := range sorted {
		if used[i] {
			continue
		}
		used[i] = true

		cluster := core.NewCluster(seed, tol)
		screen := core.RangeAround(seed.MZ, 2*tol.MZ.At(seed.MZ))

		for j := i + 1; j < len(sorted) && sorted[j].MZ <= screen.Max; j++ {
			if used[j] {
				continue
			}
			if cluster.Window.Compatible(sorted[j].Window(tol)) {
				used[j] = true
				cluster.Add(sorted[j], tol)
			}
		}

		clusters = m.reachBack(clusters, cluster, screen.Min)
	}

	for i, c := range clusters {
		c.ID = i + 1
	}
	return clusters
}

// reachBack merges cluster into compatible earlier clusters and returns the
// updated cluster list. Clusters are in ascending lowest-m/z order, so the
// walk stops at the first cluster whose lowest member is below lower.
func (m *Merger) reachBack(clusters []*core.Cluster, cluster *core.Cluster, lower float64) []*core.Cluster {
	current, currentIdx := cluster, -1

	for k := len(clusters) - 1; k >= 0; k-- {
		earlier := clusters[k]
		if earlier.LowestMZ() < lower {
			break
		}
		if !earlier.Window.Compatible(current.Window) {
			continue
		}

		m.Logger.WithFields(logrus.Fields{
			"into":    earlier.Name(),
			"members": current.Name(),
		}).Debug("merging cluster into earlier overlapping cluster")

		earlier.Absorb(current)
		if currentIdx >= 0 {
			clusters = append(clusters[:currentIdx], clusters[currentIdx+1:]...)
		}
		current, currentIdx = earlier, k
	}

	if currentIdx < 0 {
		clusters = append(clusters, current)
	}
	return clusters
}
