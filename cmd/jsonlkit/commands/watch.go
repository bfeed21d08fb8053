package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsonlkit/jsonlkit/config"
	"github.com/jsonlkit/jsonlkit/errors"
	"github.com/jsonlkit/jsonlkit/watch"
)

// WatchCmd represents the watch command
var WatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Normalize new JSONL files as they land in a directory",
	Long: `Watch a directory and normalize each new *.jsonl file that appears.

Each input file produces normalized_<name> and discarded_<name> siblings in
the output directory, matching the naming convention 'jsonlkit concat'
discovers by default. Files are processed one at a time, in arrival order.

Runs until interrupted (Ctrl-C).

Examples:
  jsonlkit watch incoming/
  jsonlkit watch incoming/ --out norm_jsonl/ --dedupe`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		outDir, _ := cmd.Flags().GetString("out")
		dedupe, _ := cmd.Flags().GetBool("dedupe")

		if !cmd.Flags().Changed("out") {
			outDir = cfg.Watch.OutputDir
		}
		if !cmd.Flags().Changed("dedupe") {
			dedupe = cfg.Watch.Dedupe
		}

		settle := time.Duration(cfg.Watch.SettleMS) * time.Millisecond
		return runWatch(args[0], outDir, dedupe, settle)
	},
}

func init() {
	WatchCmd.Flags().String("out", "norm_jsonl", "Directory for normalized_/discarded_ output files")
	WatchCmd.Flags().Bool("dedupe", false, "Deduplicate records within each file")
}

func runWatch(sourceDir, outDir string, dedupe bool, settle time.Duration) error {
	w, err := watch.New(sourceDir, outDir, dedupe, settle)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
