package exam

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mind-engage/exbank/internal/batch"
	"github.com/mind-engage/exbank/internal/correction"
	"github.com/mind-engage/exbank/internal/question"
	"github.com/mind-engage/exbank/internal/storage"
	syncx "github.com/mind-engage/exbank/internal/sync"
	"github.com/mind-engage/exbank/internal/validation"
)

// Import item statuses.
const (
	StatusCreated   = "created"
	StatusDuplicate = "duplicate"
	StatusRejected  = "rejected"
)

type ImportItem struct {
	Index       int                     `json:"index"`
	Line        int                     `json:"line"`
	Status      string                  `json:"status"`
	ID          string                  `json:"id,omitempty"` // stored question id
	Type        question.Type           `json:"type,omitempty"`
	Errors      []validation.Issue      `json:"errors"`
	Warnings    []validation.Issue      `json:"warnings"`
	Suggestions []correction.Suggestion `json:"suggestions,omitempty"`
}

type ImportResult struct {
	Exam      ExamSummary   `json:"exam"`
	Items     []ImportItem  `json:"items"`
	Summary   batch.Summary `json:"summary"`
	SourceURL string        `json:"source_url,omitempty"`
}

// Importer splits a source into questions, validates them in parallel and
// stores the valid ones under a new exam.
type Importer struct {
	store  Store
	events syncx.Log
	blobs  storage.BlobStore // optional
	opts   batch.Options
	logger *slog.Logger
}

func NewImporter(store Store, events syncx.Log, blobs storage.BlobStore, opts batch.Options) *Importer {
	if events == nil {
		events = syncx.NewMemoryLog()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Importer{store: store, events: events, blobs: blobs, opts: opts, logger: opts.Logger}
}

func (im *Importer) Import(ctx context.Context, title, source string) (ImportResult, error) {
	reports, err := batch.Run(ctx, []batch.Document{{Name: title, Source: source}}, im.opts)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}

	e := NewExam(title)
	var (
		pending []syncx.Event // emitted once the exam is stored
		created []string      // removed again if the import fails
		listed  = map[string]bool{}
	)
	fail := func(err error) (ImportResult, error) {
		im.rollback(ctx, e.ID, created)
		return ImportResult{}, err
	}
	res := ImportResult{Items: make([]ImportItem, 0, len(reports)), Summary: batch.Summarize(reports)}
	for _, r := range reports {
		item := ImportItem{
			Index:       r.Index,
			Line:        r.Line,
			Errors:      concat(r.Syntax.Errors, r.Structure.Errors),
			Warnings:    concat(r.Syntax.Warnings, r.Structure.Warnings),
			Suggestions: r.Suggestions,
		}
		if r.Question != nil {
			item.Type = r.Question.Type
		}
		if !r.Valid() {
			item.Status = StatusRejected
			if r.ParseError != "" {
				item.Errors = append(item.Errors, validation.Issue{Code: validation.CodeInternal, Message: r.ParseError})
			}
			pending = append(pending, syncx.NewEvent(syncx.TypeQuestionRejected, e.ID, map[string]any{"index": r.Index, "line": r.Line, "errors": len(item.Errors)}))
			res.Items = append(res.Items, item)
			continue
		}

		stored, isNew, err := im.store.PutQuestion(ctx, NewQuestion(e.ID, r.Raw, *r.Question))
		if err != nil {
			return fail(fmt.Errorf("store question %d: %w", r.Index, err))
		}
		item.ID = stored.ID
		item.Status = StatusCreated
		typ := syncx.TypeQuestionImported
		if isNew {
			created = append(created, stored.ID)
		} else {
			item.Status = StatusDuplicate
			typ = syncx.TypeQuestionDuplicate
		}
		if !listed[stored.ID] {
			listed[stored.ID] = true
			e.QuestionIDs = append(e.QuestionIDs, stored.ID)
		}
		pending = append(pending, syncx.NewEvent(typ, stored.ID, map[string]any{"exam_id": e.ID, "fingerprint": stored.Fingerprint, "type": stored.Type}))
		res.Items = append(res.Items, item)
	}

	if err := im.store.PutExam(ctx, e); err != nil {
		return fail(fmt.Errorf("store exam: %w", err))
	}
	for _, ev := range pending {
		im.emit(ctx, ev)
	}
	im.emit(ctx, syncx.NewEvent(syncx.TypeExamImported, e.ID, res.Summary))
	res.Exam = ExamSummary{ID: e.ID, Title: e.Title, Count: len(e.QuestionIDs), CreatedAt: e.CreatedAt}

	if im.blobs != nil {
		key, err := im.blobs.Put(storage.SourceKey(e.ID), strings.NewReader(source))
		if err != nil {
			im.logger.Warn("import: source not kept", "exam", e.ID, "error", err)
		} else if u, err := im.blobs.SignedURL(key); err == nil {
			res.SourceURL = u
		}
	}
	im.logger.Info("exam imported", "exam", e.ID, "questions", res.Summary.Questions, "stored", len(e.QuestionIDs))
	return res, nil
}

// rollback removes the questions an aborted import created. It runs even when
// ctx is already cancelled.
func (im *Importer) rollback(ctx context.Context, examID string, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := im.store.DeleteQuestions(context.WithoutCancel(ctx), ids); err != nil {
		im.logger.Error("import rollback failed", "exam", examID, "questions", len(ids), "error", err)
		return
	}
	im.logger.Warn("import rolled back", "exam", examID, "questions", len(ids))
}

func (im *Importer) emit(ctx context.Context, ev syncx.Event) {
	if err := im.events.Append(ctx, ev); err != nil {
		im.logger.Warn("event log append failed", "type", ev.Type, "key", ev.Key, "error", err)
	}
}

func concat(a, b []validation.Issue) []validation.Issue {
	out := make([]validation.Issue, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}
