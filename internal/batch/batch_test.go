package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mind-engage/exbank/internal/question"
)

const sheet = `% đề kiểm tra
\begin{ex}%[1A2B3-C][AB.45]
Giá trị của $1+1$ bằng bao nhiêu?
\choice
{$1$}
{\True $2$}
{$3$}
{$4$}
\loigiai{Ta có $1+1=2$.}
\end{ex}

\begin{ex}%[3C4D5-E][SA-12]
Tính $2+3$.
\shortans{'5'}
\loigiai{Ta có $2+3=5$.}
\end{ex}

\begin{ex}Chọn đáp án đúng nhất. \choice \loigiai{Vì vậy.}\end{ex}
`

func TestRunKeepsOrder(t *testing.T) {
	reports, err := Run(context.Background(), []Document{{Name: "sheet.tex", Source: sheet}}, Options{Workers: 2, Suggest: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports", len(reports))
	}
	wantTypes := []question.Type{question.TypeMC, question.TypeSA, question.TypeMC}
	for i, r := range reports {
		if r.Index != i || r.Document != "sheet.tex" {
			t.Errorf("report %d: index=%d doc=%q", i, r.Index, r.Document)
		}
		if r.Question == nil || r.Question.Type != wantTypes[i] {
			t.Errorf("report %d: question = %+v", i, r.Question)
		}
	}
	if reports[0].Line != 2 || reports[1].Line != 12 {
		t.Errorf("lines = %d, %d", reports[0].Line, reports[1].Line)
	}
	if !reports[0].Valid() || !reports[1].Valid() {
		t.Error("first two questions should be valid")
	}
	if reports[2].Valid() || len(reports[2].Suggestions) == 0 {
		t.Errorf("third question: valid=%v suggestions=%d", reports[2].Valid(), len(reports[2].Suggestions))
	}
	if reports[0].Suggestions != nil {
		t.Error("valid questions get no suggestions")
	}

	s := Summarize(reports)
	if s.Questions != 3 || s.Valid != 2 || s.Errors == 0 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestRunManyDocuments(t *testing.T) {
	var docs []Document
	for i := 0; i < 50; i++ {
		docs = append(docs, Document{
			Name:   fmt.Sprintf("doc%02d", i),
			Source: fmt.Sprintf(`\begin{ex}Tính $%d+1$. \shortans{'%d'}\end{ex}`, i, i+1),
		})
	}
	reports, err := Run(context.Background(), docs, Options{Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range reports {
		if r.Document != docs[i].Name {
			t.Fatalf("report %d from %s", i, r.Document)
		}
		if got := r.Question.CorrectAnswer.Value; got != fmt.Sprint(i+1) {
			t.Fatalf("report %d answer = %q", i, got)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports, err := Run(ctx, []Document{{Name: "a", Source: sheet}}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(reports) != 0 {
		t.Fatalf("got %d reports after cancel", len(reports))
	}
}

func TestOversizedBlockIsReported(t *testing.T) {
	p := question.NewParser(question.Config{MaxInputBytes: 16})
	reports, err := Run(context.Background(), []Document{{Name: "big", Source: sheet}}, Options{Parser: p})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range reports {
		if r.Question != nil || !strings.Contains(r.ParseError, "too large") {
			t.Fatalf("report = %+v", r)
		}
	}
}

func TestCheckBlankSource(t *testing.T) {
	reports, err := Check(context.Background(), "empty", "  \n")
	if err != nil || len(reports) != 0 {
		t.Fatalf("reports=%d err=%v", len(reports), err)
	}
}
