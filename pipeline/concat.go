package pipeline

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jsonlkit/jsonlkit/canonical"
	"github.com/jsonlkit/jsonlkit/classify"
	"github.com/jsonlkit/jsonlkit/errors"
	"github.com/jsonlkit/jsonlkit/logger"
)

// DefaultPattern matches the files the normalization pipeline produces in
// batch use.
const DefaultPattern = "normalized_*.jsonl"

// Concatenator merges a set of already-normalized JSONL files into one
// output stream. Inputs are expected to hold one JSON object per line, but
// every line is re-checked defensively; hand-edited files cannot corrupt
// the merged output.
type Concatenator struct {
	Dedupe bool

	log *zap.SugaredLogger
}

// NewConcatenator creates a concatenator. With dedupe=true the dedupe set
// spans the entire multi-file run, so the first occurrence of an object
// across all inputs wins.
func NewConcatenator(dedupe bool) *Concatenator {
	return &Concatenator{
		Dedupe: dedupe,
		log:    logger.Logger,
	}
}

// Discover lists files under dir matching pattern, sorted lexicographically
// so that first-occurrence-wins dedupe is reproducible across runs on an
// unchanged input set.
func Discover(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.Wrapf(err, "bad glob pattern %q", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// Run concatenates the given files, in the given order, into out.
//
// Lines that fail the defensive re-parse, or whose top-level value is not an
// object, become discard records. They are written to discarded when a sink
// is supplied and counted either way; a warning is logged so the information
// is never silently dropped.
func (c *Concatenator) Run(paths []string, out io.Writer, discarded io.Writer) (Stats, error) {
	stats := Stats{}

	var seen dedupeSet
	if c.Dedupe {
		seen = newDedupeSet()
	}

	var discardedEnc *json.Encoder
	if discarded != nil {
		discardedEnc = newLineEncoder(discarded)
	}

	for _, path := range paths {
		if err := c.appendFile(path, out, discardedEnc, seen, &stats); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// RunDir discovers inputs in sourceDir with Discover and concatenates them
// into outputPath. discardPath may be empty, in which case rejected lines
// are counted and logged but not written anywhere.
func (c *Concatenator) RunDir(sourceDir, pattern, outputPath, discardPath string) (Stats, error) {
	paths, err := Discover(sourceDir, pattern)
	if err != nil {
		return Stats{}, err
	}
	if len(paths) == 0 {
		return Stats{}, errors.WithHintf(
			errors.Newf("no files matching %q in %s", pattern, sourceDir),
			"run 'jsonlkit normalize' first, or pass --pattern")
	}
	c.log.Infow("concatenating files", "dir", sourceDir, "count", len(paths))

	out, err := os.Create(outputPath)
	if err != nil {
		return Stats{}, errors.Wrapf(err, "creating output %s", outputPath)
	}
	defer out.Close()
	bufOut := bufio.NewWriter(out)

	var disc io.Writer
	var bufDisc *bufio.Writer
	if discardPath != "" {
		discFile, err := os.Create(discardPath)
		if err != nil {
			return Stats{}, errors.Wrapf(err, "creating discard log %s", discardPath)
		}
		defer discFile.Close()
		bufDisc = bufio.NewWriter(discFile)
		disc = bufDisc
	}

	stats, err := c.Run(paths, bufOut, disc)
	if err != nil {
		return stats, err
	}

	if bufDisc != nil {
		if err := bufDisc.Flush(); err != nil {
			return stats, errors.Wrapf(err, "flushing discard log %s", discardPath)
		}
	}
	if err := bufOut.Flush(); err != nil {
		return stats, errors.Wrapf(err, "flushing output %s", outputPath)
	}
	if err := out.Close(); err != nil {
		return stats, errors.Wrapf(err, "closing output %s", outputPath)
	}
	return stats, nil
}

func (c *Concatenator) appendFile(path string, out io.Writer, discarded *json.Encoder, seen dedupeSet, stats *Stats) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening input %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineno := 0
	for scanner.Scan() {
		lineno++
		stats.LinesSeen++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		value, err := classify.Parse(line)
		if err != nil {
			if err := c.discardLine(discarded, classify.Discard{
				Line:   lineno,
				Type:   classify.TagParseError,
				Value:  line,
				Reason: classify.ReasonInvalidJSON,
			}, path, stats); err != nil {
				return err
			}
			continue
		}

		obj, ok := value.(map[string]any)
		if !ok {
			// Arrays are not unpacked here; normalized inputs must hold
			// exactly one object per line.
			if err := c.discardLine(discarded, classify.Discard{
				Line:   lineno,
				Type:   classify.TagOf(value),
				Value:  value,
				Reason: classify.ReasonNotDictOrList,
			}, path, stats); err != nil {
				return err
			}
			continue
		}

		stats.RecordsSeen++
		if c.Dedupe {
			h, err := canonical.Hash(obj)
			if err != nil {
				return errors.Wrapf(err, "%s line %d: record is not hashable", path, lineno)
			}
			if seen.seen(h) {
				stats.DuplicatesSkipped++
				c.log.Debugw("duplicate skipped", "file", path, "line", lineno, "hash", h[:12])
				continue
			}
		}

		// Pass the line through byte-for-byte; inputs are already compact.
		if _, err := io.WriteString(out, line+"\n"); err != nil {
			return errors.Wrapf(err, "%s line %d: writing record", path, lineno)
		}
		stats.Written++
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "reading input %s", path)
	}
	return nil
}

func (c *Concatenator) discardLine(discarded *json.Encoder, d classify.Discard, path string, stats *Stats) error {
	stats.Discarded++
	c.log.Warnw("rejected line in normalized input",
		"file", path, "line", d.Line, "reason", d.Reason)
	if discarded == nil {
		return nil
	}
	if err := discarded.Encode(d); err != nil {
		return errors.Wrapf(err, "%s line %d: writing discard record", path, d.Line)
	}
	return nil
}
