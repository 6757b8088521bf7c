package exam

import (
	"context"
	"errors"

	"github.com/mind-engage/exbank/internal/question"
)

var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrQuestionNotFound = errors.New("question not found")
)

type ListOpts struct {
	Q      string        // substring of content or question id
	Type   question.Type // optional
	ExamID string        // optional; every question the exam lists, duplicates included
	Limit  int
	Offset int
}

func (o *ListOpts) normalize() {
	if o.Limit <= 0 || o.Limit > 200 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

type Store interface {
	// PutQuestion stores q unless a question with the same fingerprint
	// exists, in which case the existing record is returned with created=false.
	PutQuestion(ctx context.Context, q Question) (stored Question, created bool, err error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	ListQuestions(ctx context.Context, opts ListOpts) ([]Question, error)
	// DeleteQuestions removes questions by id; unknown ids are ignored.
	DeleteQuestions(ctx context.Context, ids []string) error

	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error) // with questions, in import order
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)
}
