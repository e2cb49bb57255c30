// file: pkg/transport/router.go

package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ha1tch/floppyarchive/internal/config"
	"github.com/ha1tch/floppyarchive/pkg/acquire"
	"github.com/ha1tch/floppyarchive/pkg/cache"
)

// Server wires the core packages to an HTTP surface. It carries no
// filesystem- or FAT-parsing logic of its own; every handler delegates
// to container, fat12, cache, or acquire.
type Server struct {
	cfg   *config.Config
	cache *cache.Cache
	coord *acquire.Coordinator
}

// New builds a Server bound to the given configuration.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:   cfg,
		cache: cache.New(),
		coord: acquire.New(cfg.GwPath),
	}
}

// Cache exposes the server's Disk Cache so a config watcher can
// trigger a wholesale invalidation when the storage directory
// changes at runtime.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Router returns the mux.Router exposing this server's endpoints.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/images", s.handleListImages).Methods(http.MethodGet)
	r.HandleFunc("/images", s.handleUploadImage).Methods(http.MethodPost)
	r.HandleFunc("/images/{name}", s.handleDeleteImage).Methods(http.MethodDelete)
	r.HandleFunc("/images/{name}/index", s.handleImageIndex).Methods(http.MethodGet)
	r.HandleFunc("/images/{name}/sector", s.handleSector).Methods(http.MethodGet)
	r.HandleFunc("/images/{name}/fat/list", s.handleFatList).Methods(http.MethodGet)
	r.HandleFunc("/images/{name}/fat/deleted", s.handleFatDeleted).Methods(http.MethodGet)
	r.HandleFunc("/images/{name}/fat/file", s.handleFatFile).Methods(http.MethodGet)
	r.HandleFunc("/images/{name}/fat/recover", s.handleFatRecover).Methods(http.MethodPost)
	r.HandleFunc("/device/info", s.handleDeviceInfo).Methods(http.MethodGet)
	r.HandleFunc("/device/rpm", s.handleDeviceRpm).Methods(http.MethodGet)
	r.HandleFunc("/acquire", s.handleAcquire).Methods(http.MethodPost)
	r.HandleFunc("/acquire/{id}/cancel", s.handleAcquireCancel).Methods(http.MethodPost)

	return r
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Info("transport: handled request")
	})
}
