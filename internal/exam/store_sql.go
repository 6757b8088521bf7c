package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mind-engage/exbank/internal/question"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const questionCols = `id,exam_id,fingerprint,raw,parsed_json,created_at`

func (s *SQLStore) PutQuestion(ctx context.Context, q Question) (Question, bool, error) {
	pj, err := json.Marshal(q.Parsed)
	if err != nil {
		return Question{}, false, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO questions (id,exam_id,fingerprint,type,question_id,content,raw,parsed_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (fingerprint) DO NOTHING`,
		q.ID, q.ExamID, q.Fingerprint, string(q.Type), q.QuestionID, q.Content, q.Raw, string(pj), q.CreatedAt)
	if err != nil {
		return Question{}, false, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return q, true, nil
	}
	existing, err := scanQuestion(s.db.QueryRowContext(ctx,
		`SELECT `+questionCols+` FROM questions WHERE fingerprint=$1`, q.Fingerprint))
	if err != nil {
		return Question{}, false, err
	}
	return existing, false, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	return scanQuestion(s.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id))
}

func (s *SQLStore) ListQuestions(ctx context.Context, opts ListOpts) ([]Question, error) {
	opts.normalize()
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if opts.Type != "" {
		where = append(where, "type="+arg(string(opts.Type)))
	}
	if opts.ExamID != "" {
		ids, err := s.examQuestionIDs(ctx, opts.ExamID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []Question{}, nil
		}
		ph := make([]string, len(ids))
		for i, id := range ids {
			ph[i] = arg(id)
		}
		where = append(where, "id IN ("+strings.Join(ph, ",")+")")
	}
	if opts.Q != "" {
		p := arg("%" + strings.ToLower(opts.Q) + "%")
		where = append(where, "(LOWER(content) LIKE "+p+" OR LOWER(question_id) LIKE "+p+")")
	}
	query := `SELECT ` + questionCols + ` FROM questions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id LIMIT ` + arg(opts.Limit) + ` OFFSET ` + arg(opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// examQuestionIDs returns the ids an exam lists, or none for an unknown exam.
func (s *SQLStore) examQuestionIDs(ctx context.Context, examID string) ([]string, error) {
	var ijson string
	err := s.db.QueryRowContext(ctx, `SELECT question_ids_json FROM exams WHERE id=$1`, examID).Scan(&ijson)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(ijson), &ids); err != nil {
		return nil, fmt.Errorf("exam %s: %w", examID, err)
	}
	return ids, nil
}

func (s *SQLStore) DeleteQuestions(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id); err != nil {
			return fmt.Errorf("delete question %s: %w", id, err)
		}
	}
	return nil
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	ids := e.QuestionIDs
	if ids == nil {
		ids = []string{}
	}
	ij, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (id,title,question_ids_json,created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, question_ids_json=EXCLUDED.question_ids_json`,
		e.ID, e.Title, string(ij), e.CreatedAt)
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,question_ids_json,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var ijson string
	if err := row.Scan(&e.ID, &e.Title, &ijson, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(ijson), &e.QuestionIDs); err != nil {
		return Exam{}, err
	}
	e.Questions = make([]Question, 0, len(e.QuestionIDs))
	for _, qid := range e.QuestionIDs {
		q, err := s.GetQuestion(ctx, qid)
		if errors.Is(err, ErrQuestionNotFound) {
			continue
		}
		if err != nil {
			return Exam{}, err
		}
		e.Questions = append(e.Questions, q)
	}
	return e, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error) {
	opts.normalize()
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,question_ids_json,created_at FROM exams
		WHERE LOWER(title) LIKE $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		"%"+strings.ToLower(opts.Q)+"%", opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ExamSummary{}
	for rows.Next() {
		var es ExamSummary
		var ijson string
		if err := rows.Scan(&es.ID, &es.Title, &ijson, &es.CreatedAt); err != nil {
			return nil, err
		}
		var ids []string
		_ = json.Unmarshal([]byte(ijson), &ids)
		es.Count = len(ids)
		out = append(out, es)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanQuestion(row scanner) (Question, error) {
	var q Question
	var pjson string
	if err := row.Scan(&q.ID, &q.ExamID, &q.Fingerprint, &q.Raw, &pjson, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrQuestionNotFound
		}
		return Question{}, err
	}
	var p question.Parsed
	if err := json.Unmarshal([]byte(pjson), &p); err != nil {
		return Question{}, fmt.Errorf("question %s: %w", q.ID, err)
	}
	q.Parsed = p
	return q, nil
}
