package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/devlog/internal/checksum"
	"github.com/starford/devlog/internal/storage"
)

// ContentPrefix is the URL prefix raw content files are served under.
const ContentPrefix = "/posts"

// ContentHandler serves raw post bodies from the local content directory.
type ContentHandler struct {
	fs *storage.FS
}

// NewContentHandler creates a handler over the content directory.
func NewContentHandler(fs *storage.FS) *ContentHandler {
	return &ContentHandler{fs: fs}
}

// ServeFile handles GET /posts/*. The ETag is the SHA-256 of the file, so
// conditional requests get 304 until the file changes.
func (h *ContentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if rel == "" {
		http.NotFound(w, r)
		return
	}
	name := storage.CleanContentPath(path.Join(ContentPrefix, rel))

	data, err := h.fs.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		// Traversal attempts and unreadable files end up here.
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	w.Header().Set("ETag", checksum.ETag(data))
	if strings.HasSuffix(name, ".md") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	}
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
}

// Index handles GET /api/content.
//
//	@Summary		List content files with checksums
//	@Tags			content
//	@Produce		json
//	@Success		200	{object}	ContentIndexResponse
//	@Router			/content [get]
func (h *ContentHandler) Index(w http.ResponseWriter, _ *http.Request) {
	files, err := h.fs.List("")
	if err != nil {
		slog.Error("list content failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if files == nil {
		files = []storage.ContentMeta{}
	}
	writeJSON(w, http.StatusOK, ContentIndexResponse{Files: files})
}
