package commands

import (
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jsonlkit/jsonlkit/config"
	"github.com/jsonlkit/jsonlkit/errors"
	"github.com/jsonlkit/jsonlkit/pipeline"
)

// ConcatCmd represents the concat command
var ConcatCmd = &cobra.Command{
	Use:   "concat [source-dir] [output-file]",
	Short: "Merge normalized_*.jsonl files into a single JSONL output",
	Long: `Concatenate normalized JSONL files into one warehouse-friendly file.

Files matching the pattern are processed in lexicographic order, so with
deduplication enabled the first occurrence of a record always wins and
repeated runs over an unchanged input set produce identical output.

Every line is re-checked defensively; lines that no longer parse as a JSON
object (hand-edited inputs) are counted, logged, and optionally written to a
discard log via --discarded.

Examples:
  jsonlkit concat
  jsonlkit concat norm_jsonl/ combined.jsonl
  jsonlkit concat --no-dedupe
  jsonlkit concat --pattern 'normalized_2026*.jsonl' --discarded rejects.jsonl`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		sourceDir := cfg.Concat.SourceDir
		outputPath := cfg.Concat.OutputPath
		if len(args) > 0 {
			sourceDir = args[0]
		}
		if len(args) > 1 {
			outputPath = args[1]
		}

		noDedupe, _ := cmd.Flags().GetBool("no-dedupe")
		pattern, _ := cmd.Flags().GetString("pattern")
		discarded, _ := cmd.Flags().GetString("discarded")

		dedupe := cfg.Concat.Dedupe && !noDedupe
		if !cmd.Flags().Changed("pattern") {
			pattern = cfg.Concat.Pattern
		}
		if !cmd.Flags().Changed("discarded") {
			discarded = cfg.Concat.DiscardPath
		}

		return runConcat(sourceDir, outputPath, pattern, discarded, dedupe)
	},
}

func init() {
	ConcatCmd.Flags().Bool("no-dedupe", false, "Disable cross-file deduplication (enabled by default)")
	ConcatCmd.Flags().String("pattern", pipeline.DefaultPattern, "Glob pattern for input files within source-dir")
	ConcatCmd.Flags().String("discarded", "", "Optional JSONL file for lines rejected by the defensive re-parse")
}

func runConcat(sourceDir, outputPath, pattern, discardPath string, dedupe bool) error {
	if ext := strings.ToLower(filepath.Ext(outputPath)); ext != ".jsonl" && ext != ".ndjson" {
		pterm.Warning.Printf("Output file %q does not use .jsonl or .ndjson. Continuing.\n", filepath.Base(outputPath))
	}

	stats, err := pipeline.NewConcatenator(dedupe).RunDir(sourceDir, pattern, outputPath, discardPath)
	if err != nil {
		return err
	}

	pterm.Printf("Lines read:    %s\n", pterm.Cyan(stats.LinesSeen))
	pterm.Printf("Lines written: %s\n", pterm.Green(stats.Written))
	if dedupe {
		pterm.Printf("Duplicates skipped: %s\n", pterm.Yellow(stats.DuplicatesSkipped))
	}
	if stats.Discarded > 0 {
		if discardPath != "" {
			pterm.Printf("Rejected lines: %s -> %s\n", pterm.Yellow(stats.Discarded), discardPath)
		} else {
			pterm.Printf("Rejected lines: %s (counted only; pass --discarded to log them)\n", pterm.Yellow(stats.Discarded))
		}
	}
	pterm.Printf("Output: %s\n", outputPath)
	return nil
}
