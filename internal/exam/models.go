package exam

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/mind-engage/exbank/internal/markup"
	"github.com/mind-engage/exbank/internal/question"
)

// Question is a stored question: the parsed fields plus the markup they came
// from.
type Question struct {
	ID          string `json:"id"`
	ExamID      string `json:"exam_id,omitempty"` // exam that first imported it
	Fingerprint string `json:"fingerprint"`
	Raw         string `json:"raw"`
	question.Parsed
	CreatedAt int64 `json:"created_at"`
}

type Exam struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	QuestionIDs []string   `json:"question_ids"`
	Questions   []Question `json:"questions,omitempty"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

type ExamSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Count     int    `json:"count"`
	CreatedAt int64  `json:"created_at"`
}

// Fingerprint identifies markup up to line endings, Unicode composition and
// whitespace runs.
func Fingerprint(raw string) string {
	sum := blake2b.Sum256([]byte(markup.CollapseSpace(question.Normalize(raw))))
	return hex.EncodeToString(sum[:])
}

// NewQuestion wraps a parsed question into a record with a fresh id.
func NewQuestion(examID, raw string, p question.Parsed) Question {
	return Question{
		ID:          uuid.NewString(),
		ExamID:      examID,
		Fingerprint: Fingerprint(raw),
		Raw:         raw,
		Parsed:      p,
		CreatedAt:   time.Now().Unix(),
	}
}

func NewExam(title string) Exam {
	if title == "" {
		title = "Untitled"
	}
	return Exam{ID: uuid.NewString(), Title: title, QuestionIDs: []string{}, CreatedAt: time.Now().Unix()}
}
