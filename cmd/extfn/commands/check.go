package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/extfn/display"
	"github.com/teranos/extfn/errors"
	"github.com/teranos/extfn/generate"
	"github.com/teranos/extfn/logger"
)

// CheckCmd checks if generated files are up to date
var CheckCmd = &cobra.Command{
	Use:   "check [packages]",
	Short: "Check if generated files are up to date",
	Long: `Check if generated files match the current templates.

This command generates in memory and compares the result with the files on
disk. Nothing is written.

Exit codes:
  0 - Generated files are up to date
  1 - Files are out of date, missing or left without a template, or the
      check failed

Examples:
  extfn check                 # Check the package in the current directory
  extfn check ./...           # Check the whole module in CI
  extfn check --json ./...    # Report stale files as JSON`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	result, err := generate.CheckPackages(patternsOrDefault(args), generate.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	checkErr := result.Err()
	if errors.IsStaleError(checkErr) {
		logger.Infow("Generated files out of date",
			logger.FieldCount, len(result.Stale)+len(result.Missing)+len(result.Orphaned))
	}

	if display.ShouldOutputJSON(cmd) {
		if err := display.OutputJSON(out, result); err != nil {
			return err
		}
		return checkErr
	}

	if result.UpToDate {
		pterm.Fprintln(out, pterm.LightGreen("✓ Generated files are up to date"))
		return nil
	}

	pterm.Fprintln(out, pterm.LightRed("✗ Generated files are out of date."))
	for _, path := range result.Stale {
		pterm.Fprintln(out, "  - "+path+pterm.Gray(" (stale)"))
	}
	for _, path := range result.Missing {
		pterm.Fprintln(out, "  - "+path+pterm.Gray(" (missing)"))
	}
	for _, path := range result.Orphaned {
		pterm.Fprintln(out, "  - "+path+pterm.Gray(" (no template)"))
	}
	return checkErr
}
