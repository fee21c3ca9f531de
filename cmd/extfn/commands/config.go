package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/extfn/config"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show extfn configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective extfn configuration from all sources",
	RunE:  runConfigShow,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runConfigWhere,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a single config file",
	Long: `Validate one config file on its own, over the defaults and without
environment variables. Without an argument extfn.toml in the working
directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", config.FormatTOML, "Output format: toml, yaml, json")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configWhereCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := cfg.Marshal(configFormat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if configFormat != config.FormatJSON {
		fmt.Fprintln(out, "# extfn configuration")
	}
	_, err = out.Write(data)
	return err
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	sources := config.Sources(configFile)
	if len(sources) == 0 {
		pterm.Fprintln(out, pterm.Gray("No config files, using defaults"))
		return nil
	}
	for i, path := range sources {
		pterm.Fprintln(out, fmt.Sprintf("%d. %s", i+1, path))
	}
	pterm.Fprintln(out, pterm.Gray(fmt.Sprintf("Environment variables (%s_*) override all files", config.EnvPrefix)))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := config.FileName
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := config.LoadFromFile(path); err != nil {
		return err
	}
	pterm.Fprintln(cmd.OutOrStdout(), pterm.LightGreen("✓ ")+path)
	return nil
}
