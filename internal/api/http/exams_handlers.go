package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/exbank/internal/exam"
	"github.com/mind-engage/exbank/internal/qti/export"
)

// POST /v1/exams/import?title=  (multipart: file=source.tex, or raw body)
func ImportExamHandler(im *exam.Importer, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		title := strings.TrimSpace(r.URL.Query().Get("title"))

		var src []byte
		var err error
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			f, hdr, ferr := r.FormFile("file")
			if ferr != nil {
				http.Error(w, "file required", http.StatusBadRequest)
				return
			}
			defer f.Close()
			if title == "" {
				title = strings.TrimSuffix(hdr.Filename, ".tex")
			}
			src, err = io.ReadAll(f)
		} else {
			src, err = io.ReadAll(r.Body)
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				http.Error(w, "source too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "read: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(string(src)) == "" {
			http.Error(w, "empty source", http.StatusBadRequest)
			return
		}

		res, err := im.Import(r.Context(), title, string(src))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// GET /v1/exams?q=&limit=&offset=
func ListExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListExams(r.Context(), exam.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /v1/exams/{examID}
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := loadExam(w, r, store)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// GET /v1/exams/{examID}/export?source=1
func ExportExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := loadExam(w, r, store)
		if !ok {
			return
		}
		pkg, err := export.BuildPackage(e, export.Options{IncludeSource: r.URL.Query().Get("source") == "1"})
		if err != nil {
			http.Error(w, "export: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-%s-qti.zip"`, e.ID))
		_, _ = w.Write(pkg)
	}
}

func loadExam(w http.ResponseWriter, r *http.Request, store exam.Store) (exam.Exam, bool) {
	id := chi.URLParam(r, "examID")
	e, err := store.GetExam(r.Context(), id)
	if errors.Is(err, exam.ErrExamNotFound) {
		http.Error(w, "exam not found", http.StatusNotFound)
		return exam.Exam{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return exam.Exam{}, false
	}
	return e, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
