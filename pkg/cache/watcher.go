// file: pkg/cache/watcher.go

package cache

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

var recognizedExtensions = map[string]bool{
	".edsk": true,
	".dsk":  true,
	".img":  true,
	".ima":  true,
}

// Watcher invalidates single Cache entries as image files in a flat
// storage directory change, debouncing bursts of events the way
// editors and multi-write uploads tend to produce. The event loop
// shape follows a recursive directory watcher elsewhere in this
// lineage, narrowed to one non-recursive directory.
type Watcher struct {
	cache   *Cache
	fsw     *fsnotify.Watcher
	dir     string
	debounce time.Duration
	pending  map[string]bool
	release  chan struct{}
}

// NewWatcher starts watching dir for changes to recognized image
// files and invalidating the matching Cache entry.
func NewWatcher(c *Cache, dir string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		cache:    c,
		fsw:      fsw,
		dir:      dir,
		debounce: debounce,
		pending:  make(map[string]bool),
		release:  make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.release)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !recognizedExtensions[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			w.pending[ev.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Error("cache: watcher error")

		case <-timer.C:
			for name := range w.pending {
				log.WithField("path", name).Debug("cache: invalidating entry")
				w.cache.Invalidate(name)
			}
			w.pending = make(map[string]bool)
		}
	}
}

// Stop closes the underlying fsnotify watcher and waits for the event
// loop goroutine to exit.
func (w *Watcher) Stop() {
	w.fsw.Close()
	<-w.release
}
