package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Saul-Punybz/radar/internal/keywords"
)

// TableHandler accepts keyword table uploads.
type TableHandler struct {
	// Orientation is used when the upload does not name one.
	Orientation keywords.Orientation
}

// Upload handles POST /api/table (multipart: file, orientation).
func (h *TableHandler) Upload(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, keywords.MaxUploadBytes)
	if err := r.ParseMultipartForm(keywords.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected a multipart upload of at most 10 MB"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	orientation := h.Orientation
	if v := r.FormValue("orientation"); v != "" {
		orientation, err = keywords.ParseOrientation(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	grid, err := keywords.ReadGrid(header.Filename, file)
	if err != nil {
		writeTableError(w, header.Filename, err)
		return
	}
	table, err := keywords.Parse(grid, orientation)
	if err != nil {
		writeTableError(w, header.Filename, err)
		return
	}

	s.SetTable(header.Filename, grid, table)
	info, _ := s.TableInfo()
	slog.Info("table: uploaded",
		"file", header.Filename,
		"languages", len(info.Languages),
		"series", len(info.Series),
		"orientation", info.Orientation,
	)
	writeJSON(w, http.StatusOK, info)
}

func writeTableError(w http.ResponseWriter, filename string, err error) {
	var mte *keywords.MalformedTableError
	if errors.As(err, &mte) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": mte.Error()})
		return
	}
	slog.Error("table: read upload", "file", filename, "err", err)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read the uploaded file"})
}

// Get handles GET /api/table.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	info, ok := s.TableInfo()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no keyword table uploaded"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Keywords handles GET /api/table/keywords?language=&series=.
func (h *TableHandler) Keywords(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	table := s.Table()
	if table == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no keyword table uploaded"})
		return
	}
	language := r.URL.Query().Get("language")
	series := r.URL.Query().Get("series")
	writeJSON(w, http.StatusOK, map[string]any{
		"language": language,
		"series":   series,
		"keywords": table.KeywordsFor(language, series),
	})
}
