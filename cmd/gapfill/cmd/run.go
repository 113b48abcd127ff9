package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/gapfill/pkg/core"
	"github.com/ChrisMcGann/gapfill/pkg/filter"
	"github.com/ChrisMcGann/gapfill/pkg/gapfill"
	"github.com/ChrisMcGann/gapfill/pkg/merge"
	"github.com/ChrisMcGann/gapfill/pkg/reader/scans"
	"github.com/ChrisMcGann/gapfill/pkg/writer/sqlite"
)

var (
	// Flags for run command
	targetsFile    string
	scansFile      string
	outputFile     string
	metricsFile    string
	mzAbs          float64
	mzPPM          float64
	rtWindow       float64
	mobilityWindow float64
	shapeTolerance float64
	noiseFloor     float64
	useMobility    bool
	minRunLength   int
	threads        int
	topN           int
	cutoffPercent  float64
	minIntensity   float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconstruct features for a target list",
	Long: `Merge the target list into clusters, stream the scan list through one
gap per cluster and write every cluster and feature to a SQLite database.

Tolerance flags override the values from --config.

Examples:
  # Fill gaps with default tolerances
  gapfill run --targets targets.csv --scans run01.txt --out run01.db

  # Ion mobility data, 5 ppm, 8 workers
  gapfill run -t targets.csv -s run01.txt -o run01.db --mobility --mz-ppm 5 --threads 8`,
	RunE: runFill,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&targetsFile, "targets", "t", "", "Target list CSV (required)")
	f.StringVarP(&scansFile, "scans", "s", "", "Scan list file (required)")
	f.StringVarP(&outputFile, "out", "o", "", "Output database file (required)")
	f.StringVar(&metricsFile, "metrics-out", "", "Write Prometheus metrics to this file after the run")
	f.Float64Var(&mzAbs, "mz-abs", 0, "Absolute m/z tolerance")
	f.Float64Var(&mzPPM, "mz-ppm", 0, "Relative m/z tolerance in ppm")
	f.Float64Var(&rtWindow, "rt-window", 0, "Retention time half-window in minutes")
	f.Float64Var(&mobilityWindow, "mobility-window", 0, "Ion mobility half-window")
	f.Float64Var(&shapeTolerance, "shape-tol", 0, "Peak shape tolerance, fraction in [0,1)")
	f.Float64Var(&noiseFloor, "noise-floor", 0, "Minimum apex intensity of a reported feature")
	f.BoolVar(&useMobility, "mobility", false, "Resolve features in ion mobility")
	f.IntVar(&minRunLength, "min-run", 0, "Consecutive non-zero points required around a mobility apex")
	f.IntVar(&threads, "threads", 0, "Number of clusters processed concurrently")
	f.IntVar(&topN, "top-n", 0, "Keep only top N most intense peaks per scan (0 = no limit)")
	f.Float64Var(&cutoffPercent, "cutoff", 0, "Intensity cutoff as % of base peak (0 = no cutoff)")
	f.Float64Var(&minIntensity, "min-intensity", 0, "Drop peaks below this absolute intensity")

	runCmd.MarkFlagRequired("targets")
	runCmd.MarkFlagRequired("scans")
	runCmd.MarkFlagRequired("out")
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	t := &cfg.Tolerances
	for name, apply := range map[string]func(){
		"mz-abs":          func() { t.MZAbs = mzAbs },
		"mz-ppm":          func() { t.MZPPM = mzPPM },
		"rt-window":       func() { t.RTWindow = rtWindow },
		"mobility-window": func() { t.MobilityWindow = mobilityWindow },
		"shape-tol":       func() { t.ShapeTolerance = shapeTolerance },
		"noise-floor":     func() { t.NoiseFloor = noiseFloor },
		"mobility":        func() { cfg.Mobility.Enabled = useMobility },
		"min-run":         func() { cfg.Mobility.MinRunLength = minRunLength },
		"threads":         func() { cfg.Threads = threads },
		"top-n":           func() { cfg.Filter.TopN = topN },
		"cutoff":          func() { cfg.Filter.IntensityCutoff = cutoffPercent },
		"min-intensity":   func() { cfg.Filter.MinIntensity = minIntensity },
	} {
		if f.Changed(name) {
			apply()
		}
	}
	return cfg.Validate()
}

func runFill(cmd *cobra.Command, args []string) error {
	start := time.Now()
	if err := applyRunFlags(cmd); err != nil {
		return err
	}
	tol := cfg.CoreTolerances()

	targetList, err := loadTargets(targetsFile)
	if err != nil {
		return err
	}

	scanList, err := readScans(scansFile, cfg.ScanFilter())
	if err != nil {
		return err
	}

	clusters := merge.New(tol, log).Merge(targetList)
	log.WithFields(logrus.Fields{
		"targets":  len(targetList),
		"clusters": len(clusters),
		"scans":    len(scanList),
	}).Info("inputs loaded")

	results, err := gapfill.Run(cmd.Context(), clusters, scanList, tol, gapfill.Options{
		Threads:      cfg.Threads,
		Mobility:     cfg.Mobility.Enabled,
		MinRunLength: cfg.Mobility.MinRunLength,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	if err := writeResults(results, tol); err != nil {
		return err
	}

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	counts := make(map[gapfill.Outcome]int)
	for _, r := range results {
		counts[r.Outcome]++
	}
	fmt.Printf("\nGap fill complete!\n")
	fmt.Printf("Clusters: %d (from %d targets)\n", len(clusters), len(targetList))
	fmt.Printf("Features: %d\n", counts[gapfill.OutcomeFeature])
	if n := counts[gapfill.OutcomeNoCandidate]; n > 0 {
		fmt.Printf("No peak found: %d\n", n)
	}
	if n := counts[gapfill.OutcomeBelowNoise]; n > 0 {
		fmt.Printf("Below noise floor: %d\n", n)
	}
	fmt.Printf("Output: %s (%s)\n", outputFile, time.Since(start).Round(time.Millisecond))

	return nil
}

// readScans loads the whole scan list, cleaning and filtering peaks as it goes.
func readScans(path string, fc *filter.Config) ([]*core.Scan, error) {
	inFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan list: %w", err)
	}
	defer inFile.Close()

	reader := scans.NewReader(inFile)
	var out []*core.Scan
	for reader.Next() {
		scan := reader.Scan()
		if fc.Enabled() {
			fc.Apply(scan)
		} else {
			filter.RemoveZeroIntensityPeaks(scan)
		}
		out = append(out, scan)

		if len(out)%10000 == 0 {
			log.WithField("scans", len(out)).Debug("reading scans")
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("error reading scan list: %w", err)
	}
	return out, nil
}

func writeResults(results []gapfill.Result, tol core.Tolerances) error {
	writer, err := sqlite.NewWriter(outputFile, sqlite.RunInfo{
		TargetsPath: targetsFile,
		ScansPath:   scansFile,
		Tolerances:  tol,
		Mobility:    cfg.Mobility.Enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}

	for _, r := range results {
		if err := writer.WriteResult(r); err != nil {
			writer.Abort()
			return err
		}
	}

	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}
	log.WithField("run", writer.RunID()).Debug("results written")
	return nil
}
