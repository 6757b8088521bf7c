// internal/api/http/assets.go
package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/exbank/internal/storage"
	syncx "github.com/mind-engage/exbank/internal/sync"
)

// MountAssets serves stored sources and rendered artifacts read-only.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	// GET /v1/assets/*   -> returns the blob at whatever follows /assets/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")        // everything after /assets/
		key = strings.TrimPrefix(key, "/") // normalize
		rc, err := bs.Get(key)
		switch {
		case errors.Is(err, storage.ErrInvalidKey):
			http.Error(w, "invalid key", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "not found: "+key, http.StatusNotFound)
			return
		}
		defer rc.Close()
		ct := "application/octet-stream"
		switch {
		case strings.HasSuffix(key, ".tex"), strings.HasSuffix(key, ".text"):
			ct = "text/plain; charset=utf-8"
		case strings.HasSuffix(key, ".html"):
			ct = "text/html; charset=utf-8"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}

// GET /v1/events?after=&limit=
func ListEventsHandler(events syncx.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after := int64(parseIntDefault(r.URL.Query().Get("after"), 0))
		list, err := events.List(r.Context(), after, parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
