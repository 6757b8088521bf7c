package correction

import (
	"strings"
	"testing"

	"github.com/mind-engage/exbank/internal/markup"
	"github.com/mind-engage/exbank/internal/question"
	"github.com/mind-engage/exbank/internal/validation"
)

const validMC = `\begin{ex}%[1A2B3-C][AB.45]
Giá trị của $1+1$ bằng bao nhiêu?
\choice
{$1$}
{\True $2$}
{$3$}
{$4$}
\loigiai{Ta có $1+1=2$.}
\end{ex}`

func codes(ss []Suggestion) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.Code)
	}
	return out
}

func find(ss []Suggestion, code string) (Suggestion, bool) {
	for _, s := range ss {
		if s.Code == code {
			return s, true
		}
	}
	return Suggestion{}, false
}

func TestValidDocumentHasNoSuggestions(t *testing.T) {
	got := Suggest(validMC)
	if got == nil || len(got) != 0 {
		t.Fatalf("suggestions = %v", codes(got))
	}
}

func TestMissingEnvironment(t *testing.T) {
	doc := strings.Replace(validMC, `\end{ex}`, "", 1)
	got := Suggest(doc)
	s, ok := find(got, CodeEnvironment)
	if !ok {
		t.Fatalf("suggestions = %v", codes(got))
	}
	if s.Original != doc {
		t.Error("original must be the input document")
	}
	if r := validation.Syntax(s.Suggested); r.Has(validation.CodeMissingEnd) {
		t.Fatalf("suggestion still lacks \\end{ex}: %q", s.Suggested)
	}
}

func TestRebalance(t *testing.T) {
	doc := strings.Replace(validMC, "{$3$}", "{$3$", 1)
	got := Suggest(doc)
	s, ok := find(got, CodeBrackets)
	if !ok {
		t.Fatalf("suggestions = %v", codes(got))
	}
	if !markup.Balanced(s.Suggested) {
		t.Fatalf("suggested text still unbalanced: %q", s.Suggested)
	}
}

func TestEmptyChoiceGetsOptions(t *testing.T) {
	doc := `\begin{ex}[AB.1] Chọn đáp án đúng nhất. \choice \loigiai{Vì vậy.}\end{ex}`
	got := Suggest(doc)
	if len(got) != 1 || got[0].Code != CodeAnswerBlock {
		t.Fatalf("suggestions = %v", codes(got))
	}
	q, err := question.Parse(got[0].Suggested)
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Answers) != 4 || q.CorrectAnswer.Value != "Option B" {
		t.Fatalf("parsed suggestion = %+v", q)
	}
	if strings.Count(got[0].Suggested, `\choice`) != 1 {
		t.Fatalf("a second choice block was added: %q", got[0].Suggested)
	}
}

func TestEssayGetsSolution(t *testing.T) {
	doc := `\begin{ex}Giải bài\end{ex}`
	got := Suggest(doc)
	s, ok := find(got, CodeSolution)
	if !ok {
		t.Fatalf("suggestions = %v", codes(got))
	}
	if !strings.Contains(s.Suggested, `\loigiai{`) || !strings.HasSuffix(s.Suggested, `\end{ex}`) {
		t.Fatalf("suggested = %q", s.Suggested)
	}
	if _, ok := find(got, CodeAnswerBlock); ok {
		t.Fatal("essays never get an answer block")
	}
}

func TestSuggestionsAreIndependent(t *testing.T) {
	doc := `\begin{ex}Chứng minh rằng $a^2 \ge 0$ với mọi số thực a.`
	got := Suggest(doc)
	env, ok1 := find(got, CodeEnvironment)
	sol, ok2 := find(got, CodeSolution)
	if !ok1 || !ok2 {
		t.Fatalf("suggestions = %v", codes(got))
	}
	if strings.Contains(env.Suggested, `\loigiai`) {
		t.Error("environment fix must not include the solution fix")
	}
	if strings.Contains(sol.Suggested, `\end{ex}`) {
		t.Error("solution fix must not include the environment fix")
	}
}

func TestShortAnswerMarkerWithoutValue(t *testing.T) {
	doc := `\begin{ex}[AB.2] Tính $2+3$. \shortans \loigiai{Ta có 5.}\end{ex}`
	got := Suggest(doc)
	s, ok := find(got, CodeAnswerBlock)
	if !ok {
		t.Fatalf("suggestions = %v", codes(got))
	}
	q, _ := question.Parse(s.Suggested)
	if q.CorrectAnswer.Value != "0" {
		t.Fatalf("suggested = %q", s.Suggested)
	}
}

func TestOrphanOptionsGetAnswerBlock(t *testing.T) {
	doc := "\\begin{ex}[AB.3] Which number is even here?\n{1}\n{\\True 2}\n{3}\n\\loigiai{Two is even.}\n\\end{ex}"
	if r := validation.Syntax(doc); !r.Has(validation.CodeMissingChoice) {
		t.Fatalf("syntax errors = %v", r.Messages())
	}
	s, ok := find(Suggest(doc), CodeAnswerBlock)
	if !ok {
		t.Fatal("no answer block suggested")
	}
	if !strings.Contains(s.Suggested, "{3}\n"+answerTemplates[question.TypeMC].block+`\loigiai{`) {
		t.Fatalf("block not inserted before the solution: %q", s.Suggested)
	}
	if question.Classify(s.Suggested) != question.TypeMC {
		t.Fatalf("suggested type = %s", question.Classify(s.Suggested))
	}
}

func TestOrphanStatementsWithoutSolution(t *testing.T) {
	doc := `\begin{ex}[AB.4] Xét các mệnh đề sau. {\True a} {b} {\True c}\end{ex}`
	s, ok := find(Suggest(doc), CodeAnswerBlock)
	if !ok {
		t.Fatal("no answer block suggested")
	}
	if !strings.HasSuffix(s.Suggested, answerTemplates[question.TypeTF].block+`\end{ex}`) {
		t.Fatalf("block not inserted before \\end{ex}: %q", s.Suggested)
	}
}

func TestTooFewOptionsArePadded(t *testing.T) {
	doc := `\begin{ex}[AB.5] Chọn đáp án đúng nhất. \choice {\True Có} \loigiai{Vì vậy.}\end{ex}`
	if r := validation.Structure(doc); !r.Has(validation.CodeTooFewAnswers) {
		t.Fatalf("structure errors = %v", r.Messages())
	}
	s, ok := find(Suggest(doc), CodeAnswerBlock)
	if !ok {
		t.Fatal("no answer block suggested")
	}
	q, err := question.Parse(s.Suggested)
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Answers) != 4 || q.CorrectAnswer.Value != "Có" {
		t.Fatalf("answers = %q correct = %+v", q.Answers, q.CorrectAnswer)
	}
	if r := validation.Structure(s.Suggested); !r.IsValid {
		t.Fatalf("padded document still invalid: %v", r.Messages())
	}
}

func TestSuggestionKeepsLineEndings(t *testing.T) {
	doc := "\\begin{ex}[AB.6]\r\nGiải bài\r\n\\end{ex}"
	s, ok := find(Suggest(doc), CodeSolution)
	if !ok {
		t.Fatal("no solution suggested")
	}
	if !strings.HasPrefix(s.Suggested, "\\begin{ex}[AB.6]\r\nGiải bài\r\n") {
		t.Fatalf("prefix rewritten: %q", s.Suggested)
	}
	if strings.Contains(strings.ReplaceAll(s.Suggested, "\r\n", ""), "\n") {
		t.Fatalf("bare LF in suggestion: %q", s.Suggested)
	}
}
