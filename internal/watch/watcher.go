// Package watch observes a workspace directory for state document and
// registry changes, batching them through a debounce window so a burst of
// writes triggers a single handler call.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const (
	stateSuffix  = ".state.json"
	registryFile = "registry.json"
)

// Change is one observed filesystem event after filtering.
type Change struct {
	Path     string
	Registry bool // true when the registry document itself changed
	Removed  bool
	Time     time.Time
}

// Handler receives a debounced, deduplicated batch of changes.
type Handler func(changes []Change)

// Watcher follows state documents under a workspace root. Only
// *.state.json files and registry.json pass the filter; editor temp files
// and content markdown are ignored.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	log      *log.Logger

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once
}

// Options tunes the watcher. Zero values use defaults.
type Options struct {
	Debounce time.Duration // default 200ms
	Buffer   int           // change channel capacity, default 256
}

// New creates a watcher over root. Call Start to begin delivery.
func New(root string, handler Handler, opts Options, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		fsw:      fsw,
		handler:  handler,
		debounce: opts.Debounce,
		log:      logger.With("component", "watch"),
		changes:  make(chan Change, opts.Buffer),
		done:     make(chan struct{}),
	}, nil
}

// Start registers the root and all item directories and begins the event
// and debounce loops. Both exit when ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.eventLoop(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop halts the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != filepath.Base(root) && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// relevant reports whether an event path is a state or registry document.
func relevant(path string) bool {
	base := filepath.Base(path)
	return base == registryFile || strings.HasSuffix(base, stateSuffix)
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// New item directories must join the watch set.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(event.Name); err != nil {
						w.log.Warn("cannot watch new directory", "path", event.Name, "err", err)
					}
					continue
				}
			}
			if !relevant(event.Name) {
				continue
			}
			change := Change{
				Path:     event.Name,
				Registry: filepath.Base(event.Name) == registryFile,
				Removed:  event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename),
				Time:     time.Now(),
			}
			select {
			case w.changes <- change:
			default:
				w.log.Warn("change buffer full, dropping event", "path", event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var batch []Change
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 && w.handler != nil {
			w.handler(dedupe(batch))
			batch = nil
		}
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// dedupe keeps the latest change per path, preserving first-seen order.
func dedupe(changes []Change) []Change {
	seen := make(map[string]int, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if i, ok := seen[c.Path]; ok {
			out[i] = c
			continue
		}
		seen[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
