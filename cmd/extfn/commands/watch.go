package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/extfn/errors"
	"github.com/teranos/extfn/generate"
)

// WatchCmd regenerates templates as they change
var WatchCmd = &cobra.Command{
	Use:   "watch [dirs]",
	Short: "Regenerate template files on change",
	Long: `Generate once, then watch directories and regenerate a template file
whenever it is written. Directories are not watched recursively.

Rapid successive writes are debounced (watch.debounce_ms, default 300).
Stop with Ctrl-C.

Examples:
  extfn watch                 # Watch the current directory
  extfn watch ./text ./slice  # Watch two directories`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	dirs := patternsOrDefault(args)
	opts := generate.OptionsFromConfig(cfg)

	for _, dir := range dirs {
		outputs, err := generate.GenerateDir(dir, opts)
		if err != nil {
			return err
		}
		written, err := generate.WriteOutputs(outputs)
		if err != nil {
			return err
		}
		printWritten(out, outputs, written)
	}

	w, err := generate.NewWatcher(dirs, cfg.Watch.Debounce(), opts)
	if err != nil {
		return err
	}
	defer w.Close()

	w.OnGenerated(func(written []string, err error) {
		if err != nil {
			pterm.Fprintln(out, pterm.LightRed("✗ ")+err.Error())
			return
		}
		for _, path := range written {
			pterm.Fprintln(out, pterm.LightGreen("✓ ")+path)
		}
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.Fprintln(out, pterm.Gray("Watching for changes, Ctrl-C to stop"))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
