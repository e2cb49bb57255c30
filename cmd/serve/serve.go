// file: cmd/serve/serve.go

package serve

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ha1tch/floppyarchive/internal/config"
	"github.com/ha1tch/floppyarchive/pkg/cache"
	"github.com/ha1tch/floppyarchive/pkg/transport"
)

// Run starts the HTTP transport boundary, blocking until the server
// exits or fails to bind. A storage-directory watcher wholesale-
// invalidates the Disk Cache on config change, and an fsnotify
// watcher invalidates individual entries as image files change.
func Run(cfg *config.Config, v *viper.Viper) error {
	srv := transport.New(cfg)

	config.WatchStorageDir(v, func(newDir string) {
		log.WithField("dir", newDir).Info("serve: storage directory changed, invalidating cache")
		srv.Cache().InvalidateAll()
	})

	if w, err := cache.NewWatcher(srv.Cache(), cfg.StorageDir, 500*time.Millisecond); err != nil {
		log.WithError(err).Warn("serve: could not start storage directory watcher")
	} else {
		defer w.Stop()
	}

	log.WithField("addr", cfg.ListenAddr).Info("serve: listening")
	return http.ListenAndServe(cfg.ListenAddr, srv.Router())
}
