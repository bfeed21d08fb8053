// Package watch runs the normalization pipeline over files as they land in
// a directory. Each new *.jsonl file gets normalized_<name> and
// discarded_<name> siblings in the output directory, so a concat run over
// that directory picks them up with the default pattern.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jsonlkit/jsonlkit/errors"
	"github.com/jsonlkit/jsonlkit/logger"
	"github.com/jsonlkit/jsonlkit/pipeline"
)

// Watcher watches a directory and normalizes each newly created *.jsonl
// file. Files are processed strictly one at a time, in arrival order; the
// watcher never runs two pipeline invocations concurrently.
type Watcher struct {
	sourceDir string
	outDir    string
	dedupe    bool
	settle    time.Duration

	fsw   *fsnotify.Watcher
	ready chan string
	done  chan struct{}

	timersMu sync.Mutex
	timers   map[string]*time.Timer

	log *zap.SugaredLogger
}

// New creates a watcher over sourceDir writing results into outDir. settle
// is the quiet period after the last write event before a file is
// considered complete and processed.
func New(sourceDir, outDir string, dedupe bool, settle time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}

	if err := fsw.Add(sourceDir); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "watching directory %s", sourceDir)
	}

	return &Watcher{
		sourceDir: sourceDir,
		outDir:    outDir,
		dedupe:    dedupe,
		settle:    settle,
		fsw:       fsw,
		ready:     make(chan string, 16),
		done:      make(chan struct{}),
		timers:    make(map[string]*time.Timer),
		log:       logger.Logger,
	}, nil
}

// Run blocks, processing files until ctx is cancelled. It may be called at
// most once per Watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer close(w.done)

	w.log.Infow("watching directory", "dir", w.sourceDir, "out", w.outDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				w.scheduleFile(event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "error", err)

		case path := <-w.ready:
			if err := w.ProcessFile(path); err != nil {
				// One bad file must not stop the watch loop.
				w.log.Errorw("normalization failed", "file", path, "error", err)
			}
		}
	}
}

// scheduleFile (re)arms the settle timer for path. The timer only queues the
// path; actual processing happens on the Run goroutine, keeping pipeline
// runs sequential.
func (w *Watcher) scheduleFile(path string) {
	if !w.wantsFile(path) {
		return
	}

	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() { w.enqueue(path) })
}

// enqueue hands a settled file to the Run loop. Run may have exited between
// arming the timer and it firing; never block on a channel nobody reads
// anymore.
func (w *Watcher) enqueue(path string) {
	w.timersMu.Lock()
	delete(w.timers, path)
	w.timersMu.Unlock()

	select {
	case w.ready <- path:
	case <-w.done:
	}
}

// wantsFile filters watch events down to candidate inputs. Our own outputs
// are excluded so that watching the output directory cannot loop.
func (w *Watcher) wantsFile(path string) bool {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".jsonl") {
		return false
	}
	if strings.HasPrefix(name, "normalized_") || strings.HasPrefix(name, "discarded_") {
		return false
	}
	return true
}

// ProcessFile normalizes one file into its normalized_/discarded_ siblings
// under the output directory.
func (w *Watcher) ProcessFile(path string) error {
	name := filepath.Base(path)
	outputPath := filepath.Join(w.outDir, "normalized_"+name)
	discardPath := filepath.Join(w.outDir, "discarded_"+name)

	stats, err := pipeline.NewNormalizer(w.dedupe).RunFile(path, outputPath, discardPath)
	if err != nil {
		return err
	}

	w.log.Infow("file normalized",
		"file", name,
		"written", stats.Written,
		"discarded", stats.Discarded,
		"duplicates_skipped", stats.DuplicatesSkipped)
	return nil
}
