// file: pkg/transport/handlers.go

package transport

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ha1tch/floppyarchive/pkg/acquire"
	"github.com/ha1tch/floppyarchive/pkg/container"
	"github.com/ha1tch/floppyarchive/pkg/fat12"
)

// newAcquisitionID returns an opaque token identifying one acquisition
// read, handed back to the client so a later cancellation can address
// it via POST /acquire/{id}/cancel.
func newAcquisitionID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var cerr *container.Error
	var ferr *fat12.Error
	var aerr *acquire.Error
	switch {
	case errors.As(err, &cerr):
		switch cerr.Kind {
		case container.KindEmptyImage, container.KindUnknownSignature, container.KindInvalidGeometry:
			status = http.StatusBadRequest
		}
	case errors.As(err, &ferr):
		if ferr.Kind == fat12.KindNotFatFilesystem || ferr.Kind == fat12.KindInvalidCluster {
			status = http.StatusBadRequest
		}
	case errors.As(err, &aerr):
		switch aerr.Kind {
		case acquire.KindDeviceBusy:
			status = http.StatusConflict
		case acquire.KindExternalReadFailed:
			status = http.StatusBadGateway
		case acquire.KindCancelled:
			status = 499
		}
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) imagePath(name string) string {
	return filepath.Join(s.cfg.StorageDir, filepath.Base(name))
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.cfg.StorageDir)
	if err != nil {
		writeError(w, err)
		return
	}
	type imageStatus struct {
		Name  string `json:"name"`
		Error string `json:"error,omitempty"`
	}
	var out []imageStatus
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".edsk" && ext != ".dsk" && ext != ".img" && ext != ".ima" {
			continue
		}
		cached := s.cache.Get(s.imagePath(e.Name()))
		st := imageStatus{Name: e.Name()}
		if cached.ParseErr != nil {
			st.Error = cached.ParseErr.Error()
		}
		out = append(out, st)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, err)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	dst, err := os.Create(s.imagePath(header.Filename))
	if err != nil {
		writeError(w, err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": header.Filename})
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := os.Remove(s.imagePath(name)); err != nil {
		writeError(w, err)
		return
	}
	s.cache.Invalidate(s.imagePath(name))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImageIndex(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	entry := s.cache.Get(s.imagePath(name))
	if entry.ParseErr != nil {
		writeError(w, entry.ParseErr)
		return
	}
	writeJSON(w, http.StatusOK, entry.Index)
}

func (s *Server) handleSector(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	entry := s.cache.Get(s.imagePath(name))
	if entry.ParseErr != nil {
		writeError(w, entry.ParseErr)
		return
	}
	track, _ := strconv.Atoi(r.URL.Query().Get("track"))
	side, _ := strconv.Atoi(r.URL.Query().Get("side"))
	rVal, _ := strconv.Atoi(r.URL.Query().Get("r"))

	data, ok := entry.Index.ReadSector(entry.Buffer, track, side, byte(rVal))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sector not found"})
		return
	}
	writeJSON(w, http.StatusOK, container.HexDump(data))
}

func (s *Server) openVolume(w http.ResponseWriter, r *http.Request) (*fat12.Volume, bool) {
	name := mux.Vars(r)["name"]
	entry := s.cache.Get(s.imagePath(name))
	if entry.ParseErr != nil {
		writeError(w, entry.ParseErr)
		return nil, false
	}
	v, err := fat12.Open(entry.Flat, entry.Descriptor)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return v, true
}

func (s *Server) handleFatList(w http.ResponseWriter, r *http.Request) {
	v, ok := s.openVolume(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.Walk())
}

func (s *Server) handleFatDeleted(w http.ResponseWriter, r *http.Request) {
	v, ok := s.openVolume(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.ListDeleted())
}

func (s *Server) handleFatFile(w http.ResponseWriter, r *http.Request) {
	v, ok := s.openVolume(w, r)
	if !ok {
		return
	}
	path := r.URL.Query().Get("path")
	for _, e := range v.Walk() {
		if e.Path == path {
			data, err := v.ReadFile(e)
			if err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(e.Name)+"\"")
			w.Write(data)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "file not found"})
}

func (s *Server) handleFatRecover(w http.ResponseWriter, r *http.Request) {
	v, ok := s.openVolume(w, r)
	if !ok {
		return
	}
	path := r.URL.Query().Get("path")
	for _, d := range v.ListDeleted() {
		if d.Path == path {
			data, err := v.Recover(d)
			if err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(d.Name)+"\"")
			w.Write(data)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "deleted entry not found"})
}

func (s *Server) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.coord.Info(r.Context(), s.cfg.InfoTimeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeviceRpm(w http.ResponseWriter, r *http.Request) {
	rpm, err := s.coord.Rpm(r.Context(), s.cfg.RpmTimeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"rpm": rpm})
}

func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Format string `json:"format"`
		Tracks int    `json:"tracks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}

	id := newAcquisitionID()
	w.Header().Set("X-Acquisition-Id", id)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	acqReq := acquire.Request{
		ID:         id,
		OutputPath: s.imagePath(req.Name),
		Format:     req.Format,
		Tracks:     req.Tracks,
	}
	err := s.coord.Read(r.Context(), acqReq, func(ev acquire.ProgressEvent) {
		json.NewEncoder(w).Encode(ev)
		if flusher != nil {
			flusher.Flush()
		}
	})
	if err != nil {
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	s.cache.Invalidate(s.imagePath(req.Name))
}

func (s *Server) handleAcquireCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ok := s.coord.Cancel(id)
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": ok})
}
