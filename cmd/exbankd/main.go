package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/exbank/internal/api/http"
	"github.com/mind-engage/exbank/internal/batch"
	"github.com/mind-engage/exbank/internal/config"
	"github.com/mind-engage/exbank/internal/correction"
	"github.com/mind-engage/exbank/internal/db"
	"github.com/mind-engage/exbank/internal/exam"
	"github.com/mind-engage/exbank/internal/grading"
	"github.com/mind-engage/exbank/internal/question"
	"github.com/mind-engage/exbank/internal/render"
	storage "github.com/mind-engage/exbank/internal/storage"
	syncx "github.com/mind-engage/exbank/internal/sync"
	"github.com/mind-engage/exbank/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		store  exam.Store
		events syncx.Log
		dbh    *sql.DB
	)
	if cfg.DBDriver == "memory" {
		store, events = exam.NewInMemoryStore(), syncx.NewMemoryLog()
	} else {
		dbh, err = db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "driver", cfg.DBDriver, "error", err)
			os.Exit(1)
		}
		defer dbh.Close()
		store, events = exam.NewSQLStore(dbh, cfg.DBDriver), syncx.NewEventRepo(dbh)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		logger.Error("blob store", "error", err)
		os.Exit(1)
	}

	// --- Markup pipeline ---
	parser := question.NewParser(question.Config{MaxInputBytes: cfg.MaxInputBytes, Logger: logger})
	validator := validation.New(
		validation.WithStrictSubcount(cfg.StrictSubcount),
		validation.WithMaxInputBytes(cfg.MaxInputBytes),
		validation.WithLogger(logger),
	)
	suggester := correction.New(validator, logger)
	importer := exam.NewImporter(store, events, bs, batch.Options{
		Workers:   cfg.BatchWorkers,
		Suggest:   true,
		Parser:    parser,
		Validator: validator,
		Suggester: suggester,
		Logger:    logger,
	})

	h := api.NewRouter(api.Deps{
		Parser:      parser,
		Validator:   validator,
		Suggester:   suggester,
		Renderer:    render.New(render.Config{Parser: parser, Logger: logger}),
		Grader:      grading.NewDefaultGrader(),
		Store:       store,
		Importer:    importer,
		Events:      events,
		Blobs:       bs,
		CORSOrigins: cfg.CORSOrigins,
		Ready: func(ctx context.Context) error {
			if dbh == nil {
				return nil
			}
			return dbh.PingContext(ctx)
		},
		Logger: logger,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	stop, cancelStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelStop()
	<-stop.Done()

	shutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdown); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
