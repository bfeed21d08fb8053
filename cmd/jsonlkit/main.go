package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsonlkit/jsonlkit/cmd/jsonlkit/commands"
	"github.com/jsonlkit/jsonlkit/config"
	"github.com/jsonlkit/jsonlkit/errors"
	"github.com/jsonlkit/jsonlkit/logger"
)

var rootCmd = &cobra.Command{
	Use:   "jsonlkit",
	Short: "jsonlkit - Normalize and merge JSONL files for warehouse ingestion",
	Long: `jsonlkit - JSONL normalization toolkit.

Cleans mixed JSONL (objects, arrays, scalars, broken lines) into strict
object-per-line JSONL, with a parallel discard log for everything rejected,
and merges normalized files into a single deduplicated stream.

Available commands:
  normalize - Normalize one JSONL file into object-only JSONL
  concat    - Merge normalized_*.jsonl files into one output
  watch     - Normalize new files as they land in a directory
  version   - Show build information

Examples:
  jsonlkit normalize export.jsonl --dedupe
  jsonlkit concat norm_jsonl/ combined.jsonl
  jsonlkit watch incoming/ --out norm_jsonl/`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")

		if !cmd.Flags().Changed("json-logs") {
			if cfg, err := config.Load(); err == nil {
				jsonLogs = cfg.Log.JSON
			}
		}

		if err := logger.Initialize(verbosity, jsonLogs); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit log lines as structured JSON")

	rootCmd.AddCommand(commands.NormalizeCmd)
	rootCmd.AddCommand(commands.ConcatCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
