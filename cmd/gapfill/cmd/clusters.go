package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/gapfill/pkg/core"
	"github.com/ChrisMcGann/gapfill/pkg/merge"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters [targets.csv]",
	Short: "Print the clusters a target list merges into",
	Long: `Merge a target list with the configured tolerances and print one line per
cluster: its id, m/z, retention time and mobility windows, and member labels.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetList, err := loadTargets(args[0])
		if err != nil {
			return err
		}
		tol := cfg.CoreTolerances()
		if err := tol.Validate(); err != nil {
			return err
		}

		clusters := merge.New(tol, log).Merge(targetList)
		return printClusters(cmd.OutOrStdout(), clusters)
	},
}

func printClusters(out io.Writer, clusters []*core.Cluster) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tM/Z\tRT\tMOBILITY\tTARGETS\tLABELS")
	for _, c := range clusters {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			c.ID, formatRange(&c.Window.MZ, 4), formatRange(c.Window.RT, 2),
			formatRange(c.Window.Mobility, 3), len(c.Targets), c.Name())
	}
	return tw.Flush()
}

func formatRange(r *core.Range, precision int) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%v-%v", core.RoundFloat(r.Min, precision), core.RoundFloat(r.Max, precision))
}
