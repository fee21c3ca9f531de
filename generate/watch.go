package generate

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/extfn/errors"
	"github.com/teranos/extfn/logger"
)

// GeneratedCallback is called after a debounced batch of templates was
// regenerated, with the files written.
type GeneratedCallback func(written []string, err error)

// Watcher regenerates template files when they change
type Watcher struct {
	opts     Options
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.SugaredLogger

	mu            sync.Mutex
	pending       map[string]bool
	debounceTimer *time.Timer
	callbacks     []GeneratedCallback
}

// NewWatcher creates a watcher over dirs. Directories are not watched
// recursively.
func NewWatcher(dirs []string, debounce time.Duration, opts Options) (*Watcher, error) {
	opts = opts.withDefaults()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch directory %s", dir)
		}
	}

	return &Watcher{
		opts:     opts,
		watcher:  fw,
		debounce: debounce,
		logger:   opts.Logger.Named("watch"),
		pending:  make(map[string]bool),
	}, nil
}

// OnGenerated registers a callback run after each regeneration
func (w *Watcher) OnGenerated(callback GeneratedCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Run processes file system events until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			// Only regenerate on Write or Create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.isTemplateCandidate(event.Name) {
				continue
			}

			w.logger.Debugw("Watcher detected change",
				logger.FieldFile, event.Name,
				logger.FieldOperation, event.Op.String())
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error",
				logger.FieldError, err)
		}
	}
}

// isTemplateCandidate skips generated files, tests and editor artifacts.
// Our own writes produce events for generated files, which ends here.
func (w *Watcher) isTemplateCandidate(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".go") &&
		!strings.HasSuffix(base, w.opts.Suffix) &&
		!strings.HasSuffix(base, "_test.go") &&
		!strings.HasPrefix(base, ".")
}

// schedule debounces rapid changes and regenerates every pending file once
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = true

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

// flush regenerates the pending files and notifies callbacks
func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]bool)
	callbacks := make([]GeneratedCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	sort.Strings(paths)
	written, err := w.regenerate(paths)
	if err != nil {
		w.logger.Errorw("Regeneration failed",
			logger.FieldError, err)
	} else if len(written) > 0 {
		w.logger.Infow("Regenerated capabilities",
			logger.FieldCount, len(written),
			logger.FieldOutput, written)
	}

	for _, callback := range callbacks {
		callback(written, err)
	}
}

func (w *Watcher) regenerate(paths []string) ([]string, error) {
	var outputs []*Output
	for _, path := range paths {
		out, err := generatePath(path, w.opts)
		if errors.Is(err, os.ErrNotExist) {
			// removed or renamed after the event
			continue
		}
		if err != nil {
			return nil, err
		}
		if out != nil {
			outputs = append(outputs, out)
		}
	}
	return WriteOutputs(outputs)
}

// Close stops watching
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}
