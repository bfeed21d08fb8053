package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jsonlkit/jsonlkit/config"
	"github.com/jsonlkit/jsonlkit/errors"
	"github.com/jsonlkit/jsonlkit/pipeline"
)

// NormalizeCmd represents the normalize command
var NormalizeCmd = &cobra.Command{
	Use:   "normalize <input.jsonl>",
	Short: "Normalize mixed JSONL into object-only JSONL",
	Long: `Normalize mixed JSONL (objects, arrays, scalars, malformed lines)
into JSONL containing only top-level objects, one per line.

Per line:
  - an object is kept as-is
  - an array keeps its object elements; other elements go to the discard log
  - scalars and unparseable lines go to the discard log

The discard log records line number, array index, shape tag, original value
and a reason for every rejected item, so nothing is silently dropped.

Examples:
  jsonlkit normalize export.jsonl
  jsonlkit normalize export.jsonl --output clean.jsonl --discarded rejects.jsonl
  jsonlkit normalize export.jsonl --dedupe`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		output, _ := cmd.Flags().GetString("output")
		discarded, _ := cmd.Flags().GetString("discarded")
		dedupe, _ := cmd.Flags().GetBool("dedupe")

		if !cmd.Flags().Changed("output") {
			output = cfg.Normalize.OutputPath
		}
		if !cmd.Flags().Changed("discarded") {
			discarded = cfg.Normalize.DiscardPath
		}
		if !cmd.Flags().Changed("dedupe") {
			dedupe = cfg.Normalize.Dedupe
		}

		return runNormalize(args[0], output, discarded, dedupe)
	},
}

func init() {
	NormalizeCmd.Flags().StringP("output", "o", "normalized.jsonl", "Output JSONL file with object-only records")
	NormalizeCmd.Flags().String("discarded", "discarded.jsonl", "JSONL file for discarded non-object/malformed content")
	NormalizeCmd.Flags().Bool("dedupe", false, "Drop records whose canonical SHA-256 hash was already written")
}

func runNormalize(input, output, discarded string, dedupe bool) error {
	stats, err := pipeline.NewNormalizer(dedupe).RunFile(input, output, discarded)
	if err != nil {
		return err
	}

	printNormalizeSummary(stats, discarded, dedupe)
	return nil
}

func printNormalizeSummary(stats pipeline.Stats, discardPath string, dedupe bool) {
	if dedupe {
		pterm.Printf("Normalized records seen: %s\n", pterm.Cyan(stats.RecordsSeen))
		pterm.Printf("Unique records written:  %s\n", pterm.Green(stats.Written))
		pterm.Printf("Duplicates skipped:      %s\n", pterm.Yellow(stats.DuplicatesSkipped))
	} else {
		pterm.Printf("Normalized records written: %s (dedupe disabled)\n", pterm.Green(stats.Written))
	}
	pterm.Printf("Discarded items logged:  %s -> %s\n", pterm.Yellow(stats.Discarded), discardPath)
}
