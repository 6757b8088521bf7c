package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/exbank/internal/correction"
	"github.com/mind-engage/exbank/internal/exam"
	"github.com/mind-engage/exbank/internal/grading"
	"github.com/mind-engage/exbank/internal/question"
	"github.com/mind-engage/exbank/internal/render"
	"github.com/mind-engage/exbank/internal/storage"
	syncx "github.com/mind-engage/exbank/internal/sync"
	"github.com/mind-engage/exbank/internal/validation"
)

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	Parser    *question.Parser
	Validator *validation.Validator
	Suggester *correction.Suggester
	Renderer  *render.Renderer
	Grader    grading.Grader

	Store    exam.Store
	Importer *exam.Importer
	Events   syncx.Log
	Blobs    storage.BlobStore // optional

	CORSOrigins    []string
	MaxImportBytes int64
	// Ready reports whether backing services are reachable.
	Ready  func(ctx context.Context) error
	Logger *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.MaxImportBytes <= 0 {
		d.MaxImportBytes = 16 << 20
	}
	maxInput := d.Parser.MaxInputBytes()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(d.Logger), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "X-Render-Cache"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/v1", func(v chi.Router) {
		v.Post("/parse", ParseHandler(d.Parser))
		v.Post("/validate", ValidateHandler(d.Validator, maxInput))
		v.Post("/suggest", SuggestHandler(d.Suggester, maxInput))
		v.Post("/render", RenderHandler(d.Renderer, maxInput))

		v.Post("/exams/import", ImportExamHandler(d.Importer, d.MaxImportBytes))
		v.Get("/exams", ListExamsHandler(d.Store))
		v.Get("/exams/{examID}", GetExamHandler(d.Store))
		v.Get("/exams/{examID}/export", ExportExamHandler(d.Store))

		v.Get("/questions", ListQuestionsHandler(d.Store))
		v.Get("/questions/{id}", GetQuestionHandler(d.Store))
		v.Get("/questions/{id}/render", RenderQuestionHandler(d.Store, d.Renderer, d.Blobs, d.Logger))
		v.Post("/questions/{id}/grade", GradeQuestionHandler(d.Store, d.Grader))

		if d.Events != nil {
			v.Get("/events", ListEventsHandler(d.Events))
		}
		if d.Blobs != nil {
			v.Route("/assets", func(ar chi.Router) {
				MountAssets(ar, d.Blobs)
			})
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})
	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
