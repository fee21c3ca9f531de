package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/extfn/config"
	"github.com/teranos/extfn/display"
	"github.com/teranos/extfn/errors"
	"github.com/teranos/extfn/generate"
	"github.com/teranos/extfn/logger"
)

var (
	configFile string
	dryRun     bool
	jsonLog    bool
	jsonOutput bool

	// loaded by PersistentPreRunE
	cfg *config.Config
)

// RootCmd generates capabilities for the given packages
var RootCmd = &cobra.Command{
	Use:   "extfn [packages]",
	Short: "Generate sealed capabilities from template functions",
	Long: `extfn turns annotated template functions into sealed capabilities.

A template is a method on the placeholder type Self, usually kept in a file
excluded from the normal build:

  //go:build extfn

  //extfn:target Text
  func (s Self) CountDigits() int { ... }

For every template file extfn writes <file>_extfn.go next to it, holding the
capability interface, its seal and the implementation.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (EXTFN_* prefix)
3. Project config (--config, or extfn.toml searched upward)
4. User config (~/.extfn/extfn.toml)
5. Default values

Examples:
  extfn                       # Generate for the package in the current directory
  extfn ./...                 # Generate for all packages of the module
  extfn --dry-run ./text      # Print generated files instead of writing them
  extfn check ./...           # Fail if generated files are out of date
  extfn watch ./text          # Regenerate on save
  //go:generate extfn         # From go generate`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runGenerate,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file used instead of the project extfn.toml (user config still applies)")
	RootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	RootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Write logs as JSON")
	RootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Print results as JSON")
	RootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print generated files instead of writing them")

	RootCmd.AddCommand(CheckCmd)
	RootCmd.AddCommand(WatchCmd)
	RootCmd.AddCommand(ExpandCmd)
	RootCmd.AddCommand(ConfigCmd)
	RootCmd.AddCommand(VersionCmd)
}

// setup loads configuration and initializes logging before any command runs
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	cfg = loaded

	verbosity, _ := cmd.Flags().GetCount("verbose")
	if cfg.Log.Verbosity > verbosity {
		verbosity = cfg.Log.Verbosity
	}
	if err := logger.Initialize(jsonLog || cfg.Log.JSON, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.Debugw("Configuration loaded",
		"verbosity", logger.LevelName(verbosity),
		"sources", config.Sources(configFile))
	return nil
}

func patternsOrDefault(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()
	opts := generate.OptionsFromConfig(cfg)

	outputs, err := generate.GeneratePackages(patternsOrDefault(args), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		for _, o := range outputs {
			fmt.Fprintf(out, "// %s\n%s\n", o.Path, o.Content)
		}
		return nil
	}

	written, err := generate.WriteOutputs(outputs)
	if err != nil {
		return err
	}

	logger.Debugw("Generation finished",
		logger.FieldCount, len(outputs),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(out, generateSummary{Generated: len(outputs), Written: nonNil(written)})
	}
	printWritten(out, outputs, written)
	return nil
}

// generateSummary is the --json form of a generate run
type generateSummary struct {
	Generated int      `json:"generated"`
	Written   []string `json:"written"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func printWritten(out io.Writer, outputs []*generate.Output, written []string) {
	if len(outputs) == 0 {
		pterm.Warning.WithWriter(out).Println("No extfn templates found")
		return
	}
	for _, path := range written {
		pterm.Fprintln(out, pterm.LightGreen("✓ ")+path)
	}
	pterm.Fprintln(out, pterm.Gray(fmt.Sprintf("%d generated, %d unchanged", len(written), len(outputs)-len(written))))
}
