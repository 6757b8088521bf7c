package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/exbank/internal/exam"
	"github.com/mind-engage/exbank/internal/grading"
	"github.com/mind-engage/exbank/internal/question"
	"github.com/mind-engage/exbank/internal/render"
	"github.com/mind-engage/exbank/internal/storage"
)

// GET /v1/questions?q=&type=&exam=&limit=&offset=
func ListQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs := r.URL.Query()
		t := question.Type(strings.ToUpper(strings.TrimSpace(qs.Get("type"))))
		if t != "" && !t.Valid() {
			http.Error(w, "type must be one of MC, TF, SA, ES", http.StatusBadRequest)
			return
		}
		list, err := store.ListQuestions(r.Context(), exam.ListOpts{
			Q:      strings.TrimSpace(qs.Get("q")),
			Type:   t,
			ExamID: qs.Get("exam"),
			Limit:  parseIntDefault(qs.Get("limit"), 50),
			Offset: parseIntDefault(qs.Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /v1/questions/{id}
func GetQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := loadQuestion(w, r, store)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// GET /v1/questions/{id}/render?format=html|text
// Rendered views are cached in the blob store when one is configured.
func RenderQuestionHandler(store exam.Store, rd *render.Renderer, bs storage.BlobStore, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := lookupFormat(r)
		if !ok {
			http.Error(w, "unknown format", http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "id")
		w.Header().Set("Content-Type", f.ContentType)
		key := storage.RenderKey(id, f.Name)
		if bs != nil {
			if rc, err := bs.Get(key); err == nil {
				defer rc.Close()
				w.Header().Set("X-Render-Cache", "hit")
				_, _ = io.Copy(w, rc)
				return
			}
		}
		q, ok := loadQuestion(w, r, store)
		if !ok {
			return
		}
		out := f.Render(rd, q.Raw)
		if bs != nil {
			if _, err := bs.Put(key, strings.NewReader(out)); err != nil {
				log.Warn("render cache put failed", "key", key, "error", err)
			}
		}
		_, _ = io.WriteString(w, out)
	}
}

type gradeRequest struct {
	Response any     `json:"response"`
	Points   float64 `json:"points"`
}

// POST /v1/questions/{id}/grade  {"response": "B", "points": 1}
func GradeQuestionHandler(store exam.Store, g grading.Grader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in gradeRequest
		dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
		if err := dec.Decode(&in); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if in.Points <= 0 {
			in.Points = 1
		}
		q, ok := loadQuestion(w, r, store)
		if !ok {
			return
		}
		res, err := g.Grade(r.Context(), grading.FromParsed(q.Parsed, in.Points), in.Response)
		if errors.Is(err, grading.ErrBadResponse) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func loadQuestion(w http.ResponseWriter, r *http.Request, store exam.Store) (exam.Question, bool) {
	q, err := store.GetQuestion(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, exam.ErrQuestionNotFound) {
		http.Error(w, "question not found", http.StatusNotFound)
		return exam.Question{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return exam.Question{}, false
	}
	return q, true
}
