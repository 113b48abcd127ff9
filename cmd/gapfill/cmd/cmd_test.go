package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/gapfill/pkg/core"
	"github.com/ChrisMcGann/gapfill/pkg/filter"
	"github.com/ChrisMcGann/gapfill/pkg/reader/targets"
)

const testScans = `Scan: 1
RT: 4.90
Num peaks: 1
300.1 100

Scan: 2
RT: 5.00
Num peaks: 2
150.0 50
300.1 1000

Scan: 3
RT: 5.05
Num peaks: 1
300.1 1500

Scan: 4
RT: 5.08
MSLevel: 2
PrecursorMZ: 300.1
Num peaks: 1
120.0 10

Scan: 5
RT: 5.10
Num peaks: 1
300.1 1400

Scan: 6
RT: 5.20
Num peaks: 1
300.1 200
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// resetFlags restores every flag to its default so commands do not leak
// values into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	targetsPath := writeFile(t, dir, "targets.csv", "label,mz,rt\ncaffeine,300.1,5.1\nghost,410.2,8.0\n")
	scansPath := writeFile(t, dir, "scans.txt", testScans)
	dbPath := filepath.Join(dir, "out.db")
	metricsPath := filepath.Join(dir, "metrics.prom")

	_, err := execute(t, "run", "--log-level", "error",
		"-t", targetsPath, "-s", scansPath, "-o", dbPath, "--metrics-out", metricsPath,
		"--mz-abs", "0.01", "--mz-ppm", "0", "--rt-window", "0.1",
		"--shape-tol", "0.1", "--noise-floor", "100")
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var clusters, features int
	require.NoError(t, db.QueryRow(`SELECT ClusterCount, FeatureCount FROM RunTable`).Scan(&clusters, &features))
	require.Equal(t, 2, clusters)
	require.Equal(t, 1, features)

	var height float64
	var ms2 string
	require.NoError(t, db.QueryRow(`SELECT Height, MS2Scans FROM FeatureTable`).Scan(&height, &ms2))
	require.Equal(t, 1500.0, height)
	require.Equal(t, "4", ms2)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(metrics), "gapfill_gaps_total")
}

func TestClustersCommand(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "config.yaml", "tolerances:\n  mz_abs: 0.01\n  mz_ppm: 0\n  rt_window: 0.1\n")
	targetsPath := writeFile(t, dir, "targets.csv", "label,mz,rt\na,100.000,5.0\nb,100.005,5.05\nc,200.0,\n")

	out, err := execute(t, "clusters", "--config", config, targetsPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "a;b")
	require.Contains(t, lines[2], "c")
	require.Contains(t, lines[2], " - ")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	targetsPath := writeFile(t, dir, "targets.csv", "label,mz,rt,mobility\na,100.0,5.0,0.9\nb,200.0,,\n")
	scansPath := writeFile(t, dir, "scans.txt", testScans)

	out, err := execute(t, "validate", targetsPath, "--scans", scansPath)
	require.NoError(t, err)
	require.Contains(t, out, "2 targets (1 with RT, 1 with mobility)")
	require.Contains(t, out, "6 scans (5 MS1)")

	unordered := writeFile(t, dir, "unordered.txt", "Scan: 1\nRT: 2\nNum peaks: 0\nScan: 2\nRT: 1\nNum peaks: 0\n")
	_, err = execute(t, "validate", targetsPath, "--scans", unordered)
	require.Error(t, err)
	require.Contains(t, err.Error(), "retention time order")

	bad := writeFile(t, dir, "bad.csv", "label,mz\nx,-1\n")
	_, err = execute(t, "validate", bad)
	require.Error(t, err)

	empty := writeFile(t, dir, "empty.csv", "label,mz\n")
	_, err = execute(t, "validate", empty)
	require.ErrorIs(t, err, targets.ErrNoTargets)
}

func TestFormatRange(t *testing.T) {
	require.Equal(t, "-", formatRange(nil, 2))
	require.Equal(t, "4.9-5.2", formatRange(&core.Range{Min: 4.9, Max: 5.2}, 2))
	require.Equal(t, "100.0049-100.0151", formatRange(&core.Range{Min: 100.00494, Max: 100.01506}, 4))
}

func TestReadScans(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scans.txt", "Scan: 1\nRT: 1\nNum peaks: 4\n100 0\n200 50\n300 500\n400 1000\n")

	tests := []struct {
		name string
		fc   *filter.Config
		want []float64
	}{
		{name: "no filter drops zero peaks", want: []float64{200, 300, 400}},
		{name: "filter", fc: &filter.Config{IntensityCutoff: 10}, want: []float64{300, 400}},
		{name: "top n", fc: &filter.Config{TopN: 1}, want: []float64{400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readScans(path, tt.fc)
			require.NoError(t, err)
			require.Len(t, got, 1)

			var mzs []float64
			for _, p := range got[0].Peaks {
				mzs = append(mzs, p.MZ)
			}
			require.Equal(t, tt.want, mzs)
		})
	}
}
