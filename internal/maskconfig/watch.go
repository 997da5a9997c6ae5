package maskconfig

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/envmask/internal/obslog"
)

// Watcher watches a single policy/mode configuration file and re-decodes
// it whenever it changes, delivering the new Config on a channel. This
// is ambient tooling: parse/generate work identically whether or not a
// Watcher is attached.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher
	log  *obslog.Logger

	updates chan Config
	errs    chan error

	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher starts watching path for changes, reloading immediately on
// each write or rename event.
func NewWatcher(path string, log *obslog.Logger) (*Watcher, error) {
	if log == nil {
		log = obslog.NullLogger
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		fsw:     fsw,
		log:     log.WithComponent("maskconfig.watch"),
		updates: make(chan Config, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Updates delivers a newly decoded Config when the watched file changes.
// It buffers one Config; a reload that finds the buffer still full is
// dropped.
func (w *Watcher) Updates() <-chan Config { return w.updates }

// Errors delivers reload failures (e.g. malformed TOML after an edit);
// the previous Config remains whatever the caller last received.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops watching and releases the underlying fsnotify watcher.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}

func (w *Watcher) run() {
	defer close(w.updates)
	defer close(w.errs)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("reload of %s failed: %v", w.path, err)
				select {
				case w.errs <- err:
				default:
				}
				continue
			}
			select {
			case w.updates <- cfg:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}
