// Package pipeline drives the line classifier over whole files: the
// normalization pipeline turns mixed JSONL into object-only JSONL plus a
// discard log, and the concatenation pipeline merges already-normalized
// files into one stream. Both are single-threaded and strictly sequential;
// the only state carried across lines is the optional dedupe set.
package pipeline

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jsonlkit/jsonlkit/canonical"
	"github.com/jsonlkit/jsonlkit/classify"
	"github.com/jsonlkit/jsonlkit/errors"
	"github.com/jsonlkit/jsonlkit/logger"
)

// maxLineBytes bounds the scanner buffer. JSONL lines are usually small,
// but warehouse exports with embedded blobs can run long.
const maxLineBytes = 16 * 1024 * 1024

// Normalizer runs the normalization pipeline: classify every input line,
// write accepted objects and discard records as they are produced, and
// optionally drop duplicate objects by canonical hash.
type Normalizer struct {
	Dedupe bool

	log *zap.SugaredLogger
}

// NewNormalizer creates a normalizer. Pass dedupe=true to drop records whose
// canonical hash was already written during this run.
func NewNormalizer(dedupe bool) *Normalizer {
	return &Normalizer{
		Dedupe: dedupe,
		log:    logger.Logger,
	}
}

// Run normalizes input line-by-line, writing accepted objects to accepted
// and discard records to discarded, one compact JSON value per line each.
// Both sinks see records in source order; dedupe only filters, never
// reorders. Sink write failures are fatal and abort the run.
func (n *Normalizer) Run(input io.Reader, accepted, discarded io.Writer) (Stats, error) {
	stats := Stats{}

	var seen dedupeSet
	if n.Dedupe {
		seen = newDedupeSet()
	}

	acceptedEnc := newLineEncoder(accepted)
	discardedEnc := newLineEncoder(discarded)

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		stats.LinesSeen++
		lineno := stats.LinesSeen

		records, discards := classify.Line(scanner.Text(), lineno)

		for _, rec := range records {
			stats.RecordsSeen++

			if n.Dedupe {
				h, err := canonical.Hash(rec)
				if err != nil {
					// The classifier only accepts values from the JSON
					// parser, so this indicates a broken invariant.
					return stats, errors.Wrapf(err, "line %d: accepted record is not hashable", lineno)
				}
				if seen.seen(h) {
					stats.DuplicatesSkipped++
					n.log.Debugw("duplicate skipped", "line", lineno, "hash", h[:12])
					continue
				}
			}

			if err := acceptedEnc.Encode(rec); err != nil {
				return stats, errors.Wrapf(err, "line %d: writing accepted record", lineno)
			}
			stats.Written++
		}

		for _, d := range discards {
			if err := discardedEnc.Encode(d); err != nil {
				return stats, errors.Wrapf(err, "line %d: writing discard record", lineno)
			}
			stats.Discarded++
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.Wrap(err, "reading input")
	}

	return stats, nil
}

// RunFile normalizes inputPath into outputPath, logging discarded items to
// discardPath. A missing input or an unwritable output is fatal; partially
// written outputs are left in place.
func (n *Normalizer) RunFile(inputPath, outputPath, discardPath string) (Stats, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return Stats{}, errors.Wrapf(err, "opening input %s", inputPath)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return Stats{}, errors.Wrapf(err, "creating output %s", outputPath)
	}
	defer out.Close()

	disc, err := os.Create(discardPath)
	if err != nil {
		return Stats{}, errors.Wrapf(err, "creating discard log %s", discardPath)
	}
	defer disc.Close()

	bufOut := bufio.NewWriter(out)
	bufDisc := bufio.NewWriter(disc)

	stats, err := n.Run(in, bufOut, bufDisc)
	if err != nil {
		return stats, err
	}

	if err := bufOut.Flush(); err != nil {
		return stats, errors.Wrapf(err, "flushing output %s", outputPath)
	}
	if err := bufDisc.Flush(); err != nil {
		return stats, errors.Wrapf(err, "flushing discard log %s", discardPath)
	}
	if err := out.Close(); err != nil {
		return stats, errors.Wrapf(err, "closing output %s", outputPath)
	}
	if err := disc.Close(); err != nil {
		return stats, errors.Wrapf(err, "closing discard log %s", discardPath)
	}

	n.log.Infow("normalized file",
		"input", inputPath,
		"written", stats.Written,
		"discarded", stats.Discarded,
		"duplicates_skipped", stats.DuplicatesSkipped)

	return stats, nil
}

// newLineEncoder returns a JSON encoder producing one compact, unescaped
// value per line, matching the canonical serialization's string escaping.
func newLineEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}
