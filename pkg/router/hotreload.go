package router

import (
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// ConfigLoader turns raw bytes from a routes file into a Config. Callers
// supply this; router itself has no opinion on the file's encoding.
type ConfigLoader func([]byte) (Config, error)

// Watcher hot-reloads a router's route list from a file on disk whenever it
// changes, using fsnotify. This is the one piece of post-start
// reconfiguration the pipeline allows: routing is data-plane selection,
// not chain topology, and decorator chains themselves stay sealed once
// built. Grounded on the file-watch idiom the rest of the pack uses for
// config hot-reload.
type Watcher struct {
	router *Router
	path   string
	load   ConfigLoader
	log    *logrus.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher builds a watcher for path, applying an initial load
// immediately.
func NewWatcher(router *Router, path string, load ConfigLoader, log *logrus.Logger) (*Watcher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &Watcher{router: router, path: path, load: load, log: log}
	if err := w.reload(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Watcher) reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}
	cfg, err := w.load(data)
	if err != nil {
		return err
	}
	w.router.Reconfigure(cfg)
	return nil
}

// Start begins watching the routes file for changes until Stop is called.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.path); err != nil {
		fsw.Close()
		return err
	}
	w.fsw = fsw
	w.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if err := w.reload(); err != nil {
						w.log.WithError(err).WithField("path", w.path).Warn("router hot-reload failed, keeping previous routes")
					} else {
						w.log.WithField("path", w.path).Info("router routes reloaded")
					}
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.log.WithError(err).Warn("router hot-reload watch error")
			case <-w.done:
				return
			}
		}
	}()
	return nil
}

// Stop halts the file watch.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	close(w.done)
	return w.fsw.Close()
}
