package export

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/store"
)

type Handler struct {
	store store.Store
	key   string
}

func NewHandler(st store.Store, key string) *Handler {
	return &Handler{store: st, key: key}
}

// ExportPNG renders the stored scene. Query parameters width, height,
// background and grid override the defaults. With nothing stored an empty
// workspace is rendered.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec := document.NewEmptyRecord()
	data, err := h.store.Get(r.Context(), h.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		slog.Error("load scene for export", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	default:
		rec, err = document.Decode(data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}

	var buf bytes.Buffer
	if err := RenderPNG(&buf, rec, opts); err != nil {
		slog.Error("render png", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("export rendered", "width", opts.Width, "height", opts.Height, "shapes", len(rec.Workspace))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition", `inline; filename="workspace.png"`)
	w.Write(buf.Bytes())
}

func parseOptions(r *http.Request) (Options, error) {
	opts := DefaultOptions()
	q := r.URL.Query()
	if v := q.Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxDimension {
			return opts, errors.New("invalid width")
		}
		opts.Width = n
	}
	if v := q.Get("height"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxDimension {
			return opts, errors.New("invalid height")
		}
		opts.Height = n
	}
	if v := q.Get("grid"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid grid")
		}
		opts.Grid = b
	}
	if v := q.Get("background"); v != "" {
		opts.Background = "#" + v
	}
	return opts, nil
}
