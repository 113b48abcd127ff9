package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/gapfill/pkg/gapfill"
)

var validateScans string

var validateCmd = &cobra.Command{
	Use:   "validate [targets.csv]",
	Short: "Validate a target list and optionally a scan list",
	Long: `Check that every target has usable coordinates and, with --scans, that
every scan is well formed and retention times never decrease.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateScans, "scans", "s", "", "Scan list file to check as well")
}

func runValidate(cmd *cobra.Command, args []string) error {
	targetList, err := loadTargets(args[0])
	if err != nil {
		return err
	}

	withRT, withMobility := 0, 0
	for _, t := range targetList {
		if t.RT != nil {
			withRT++
		}
		if t.Mobility != nil {
			withMobility++
		}
	}
	log.WithFields(logrus.Fields{
		"targets":  len(targetList),
		"rt":       withRT,
		"mobility": withMobility,
	}).Debug("target list checked")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d targets (%d with RT, %d with mobility)\n", args[0], len(targetList), withRT, withMobility)

	if validateScans == "" {
		return nil
	}

	scanList, err := readScans(validateScans, nil)
	if err != nil {
		return err
	}
	if err := gapfill.CheckScans(scanList); err != nil {
		return fmt.Errorf("%s: %w", validateScans, err)
	}

	ms1 := 0
	for _, s := range scanList {
		if s.MSLevel == 1 {
			ms1++
		}
	}
	fmt.Fprintf(out, "%s: %d scans (%d MS1)\n", validateScans, len(scanList), ms1)
	if len(scanList) > 0 && ms1 == 0 {
		log.WithField("path", validateScans).Warn("scan list has no MS1 scans")
	}
	return nil
}
