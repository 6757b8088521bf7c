package exam

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryStore struct {
	mu            sync.RWMutex
	exams         map[string]Exam
	questions     map[string]Question
	byFingerprint map[string]string
}

func NewInMemoryStore() Store {
	return &memoryStore{
		exams:         map[string]Exam{},
		questions:     map[string]Question{},
		byFingerprint: map[string]string{},
	}
}

func (m *memoryStore) PutQuestion(_ context.Context, q Question) (Question, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byFingerprint[q.Fingerprint]; ok {
		return m.questions[id], false, nil
	}
	m.questions[q.ID] = q
	m.byFingerprint[q.Fingerprint] = q.ID
	return q, true, nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrQuestionNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuestions(_ context.Context, opts ListOpts) ([]Question, error) {
	opts.normalize()
	m.mu.RLock()
	defer m.mu.RUnlock()
	var member map[string]bool
	if opts.ExamID != "" {
		member = map[string]bool{}
		for _, id := range m.exams[opts.ExamID].QuestionIDs {
			member[id] = true
		}
	}
	all := make([]Question, 0, len(m.questions))
	q := strings.ToLower(opts.Q)
	for _, x := range m.questions {
		if opts.Type != "" && x.Type != opts.Type {
			continue
		}
		if member != nil && !member[x.ID] {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(x.Content), q) && !strings.Contains(strings.ToLower(x.QuestionID), q) {
			continue
		}
		all = append(all, x)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return all[i].ID < all[j].ID
	})
	return page(all, opts.Offset, opts.Limit), nil
}

func (m *memoryStore) DeleteQuestions(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			delete(m.byFingerprint, q.Fingerprint)
			delete(m.questions, id)
		}
	}
	return nil
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.Questions = nil
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	e.Questions = make([]Question, 0, len(e.QuestionIDs))
	for _, qid := range e.QuestionIDs {
		if q, ok := m.questions[qid]; ok {
			e.Questions = append(e.Questions, q)
		}
	}
	return e, nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]ExamSummary, error) {
	opts.normalize()
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]ExamSummary, 0, len(m.exams))
	q := strings.ToLower(opts.Q)
	for _, e := range m.exams {
		if q != "" && !strings.Contains(strings.ToLower(e.Title), q) {
			continue
		}
		all = append(all, ExamSummary{ID: e.ID, Title: e.Title, Count: len(e.QuestionIDs), CreatedAt: e.CreatedAt})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return all[i].ID < all[j].ID
	})
	return page(all, opts.Offset, opts.Limit), nil
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
