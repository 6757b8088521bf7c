package question

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const mcDoc = "\\begin{ex}%[1A2B3-C][AB.45]\nQ?\n\\choice\n{x}\n{\\True y}\n\\loigiai{z}\n\\end{ex}"

func TestParseMultipleChoice(t *testing.T) {
	q, err := Parse(mcDoc)
	if err != nil {
		t.Fatal(err)
	}
	if q.Type != TypeMC {
		t.Fatalf("type = %s, want MC", q.Type)
	}
	if q.QuestionID != "1A2B3-C" {
		t.Errorf("question id = %q", q.QuestionID)
	}
	want := &Subcount{Prefix: "AB", Number: "45", FullID: "AB.45"}
	if !reflect.DeepEqual(q.Subcount, want) {
		t.Errorf("subcount = %+v, want %+v", q.Subcount, want)
	}
	if !reflect.DeepEqual(q.Answers, []string{"x", "y"}) {
		t.Errorf("answers = %q", q.Answers)
	}
	if q.CorrectAnswer.Multi || q.CorrectAnswer.Value != "y" {
		t.Errorf("correct = %+v", q.CorrectAnswer)
	}
	if !reflect.DeepEqual(q.Solutions, []string{"z"}) {
		t.Errorf("solutions = %q", q.Solutions)
	}
	if q.Content != "Q?" {
		t.Errorf("content = %q", q.Content)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Type
	}{
		{`\choiceTF {a}{\True b}`, TypeTF},
		{`\choice {a}{\True b}`, TypeMC},
		{`\choice {a} \choiceTF {b}`, TypeTF},
		{`\shortans{'3'}`, TypeSA},
		{`just a question`, TypeES},
		{``, TypeES},
	}
	for _, tt := range tests {
		if got := Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestMultipleChoiceAnswers(t *testing.T) {
	opts := []string{"alpha", "beta", "gamma", "delta"}
	for correct := range opts {
		var sb strings.Builder
		sb.WriteString("\\begin{ex}Pick one\n\\choice\n")
		for i, o := range opts {
			if i == correct {
				sb.WriteString("{\\True " + o + "}\n")
			} else {
				sb.WriteString("{" + o + "}\n")
			}
		}
		sb.WriteString("\\end{ex}")
		q, err := Parse(sb.String())
		if err != nil {
			t.Fatal(err)
		}
		if len(q.Answers) != len(opts) {
			t.Fatalf("answers = %q", q.Answers)
		}
		if q.CorrectAnswer.Value != opts[correct] {
			t.Errorf("correct = %q, want %q", q.CorrectAnswer.Value, opts[correct])
		}
	}
}

func TestCorrectOptionWithNestedBraces(t *testing.T) {
	doc := `\begin{ex}Tính \choice{$1$}{\True $\frac{1}{2}$}{$2$}{$3$}\end{ex}`
	q, err := Parse(doc)
	if err != nil {
		t.Fatal(err)
	}
	if q.CorrectAnswer.Value != `$\frac{1}{2}$` {
		t.Fatalf("correct = %q", q.CorrectAnswer.Value)
	}
	if len(q.Answers) != 4 {
		t.Fatalf("answers = %q", q.Answers)
	}
}

func TestTrueFalse(t *testing.T) {
	doc := `\begin{ex}Xét các mệnh đề
\choiceTF
{\True a đúng}
{b sai}
{\True c có $\frac{1}{2}$}
{d}
\end{ex}`
	q, err := Parse(doc)
	if err != nil {
		t.Fatal(err)
	}
	if q.Type != TypeTF {
		t.Fatalf("type = %s", q.Type)
	}
	want := []string{"a đúng", `c có $\frac{1}{2}$`}
	if !reflect.DeepEqual(q.CorrectAnswer.Values, want) {
		t.Fatalf("correct = %q, want %q", q.CorrectAnswer.Values, want)
	}
	if len(q.Answers) != 4 {
		t.Fatalf("answers = %q", q.Answers)
	}
}

func TestTrueFalseWithoutTrueMarkers(t *testing.T) {
	q, err := Parse(`\begin{ex}Q \choiceTF{a}{b}{c}{d}\end{ex}`)
	if err != nil {
		t.Fatal(err)
	}
	if !q.CorrectAnswer.Multi || len(q.CorrectAnswer.Values) != 0 {
		t.Fatalf("correct = %+v", q.CorrectAnswer)
	}
	b, _ := json.Marshal(q.CorrectAnswer)
	if string(b) != "[]" {
		t.Fatalf("json = %s", b)
	}
}

func TestShortAnswer(t *testing.T) {
	tests := []struct{ doc, want string }{
		{`\begin{ex}Tính 1+2 \shortans{'3'}\end{ex}`, "3"},
		{`\begin{ex}Tính \shortans[oly]{'0,5'}\end{ex}`, "0,5"},
		{`\begin{ex}Tính \shortans{ 12 }\end{ex}`, "12"},
	}
	for _, tt := range tests {
		q, err := Parse(tt.doc)
		if err != nil {
			t.Fatal(err)
		}
		if q.Type != TypeSA {
			t.Fatalf("type = %s", q.Type)
		}
		if q.CorrectAnswer.Value != tt.want || !reflect.DeepEqual(q.Answers, []string{tt.want}) {
			t.Errorf("%s: correct = %q answers = %q", tt.doc, q.CorrectAnswer.Value, q.Answers)
		}
	}
}

func TestEssay(t *testing.T) {
	q, err := Parse(`\begin{ex}Chứng minh rằng tổng hai số lẻ là số chẵn. \loigiai{Gọi $2a+1$ và $2b+1$.}\end{ex}`)
	if err != nil {
		t.Fatal(err)
	}
	if q.Type != TypeES || len(q.Answers) != 0 || !q.CorrectAnswer.Empty() {
		t.Fatalf("got %+v", q)
	}
	if q.Solutions[0] != "Gọi $2a+1$ và $2b+1$." {
		t.Fatalf("solution = %q", q.Solutions[0])
	}
}

func TestSolutionWithNestedBraces(t *testing.T) {
	ex := NewExtractor(nil)
	s, ok := ex.Solution(`\loigiai{Ta có $\frac{a}{b}$ nên đúng}`)
	if !ok || s != `Ta có $\frac{a}{b}$ nên đúng` {
		t.Fatalf("got %q, %v", s, ok)
	}
	if _, ok := ex.Solution(`\loigiai{never closed`); ok {
		t.Fatal("expected none for an unclosed solution")
	}
	if _, ok := ex.Solution(`no solution`); ok {
		t.Fatal("expected none without marker")
	}
}

func TestSourcesAndContent(t *testing.T) {
	doc := `\begin{ex}%[Nguồn: "Đề thi thử 2024"][XY-12]
Cho hình vẽ \includegraphics[width=3cm]{hinh.png} và
\begin{tikzpicture}\draw (0,0)--(1,1);\end{tikzpicture}
tìm x. [Nguồn: "Sở GD"]
\shortans{'2'}
\end{ex}`
	q, err := Parse(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(q.Sources, []string{"Đề thi thử 2024", "Sở GD"}) {
		t.Errorf("sources = %q", q.Sources)
	}
	if q.Content != "Cho hình vẽ và tìm x." {
		t.Errorf("content = %q", q.Content)
	}
	if q.Subcount == nil || q.Subcount.FullID != "XY-12" {
		t.Errorf("subcount = %+v", q.Subcount)
	}
	if q.QuestionID != "" {
		t.Errorf("unexpected id %q", q.QuestionID)
	}
}

func TestMalformedIDIsNotContent(t *testing.T) {
	q, err := Parse(`\begin{ex}%[1A2B3C] Câu hỏi dài đủ để kiểm tra.\end{ex}`)
	if err != nil {
		t.Fatal(err)
	}
	if q.Content != "Câu hỏi dài đủ để kiểm tra." {
		t.Errorf("content = %q", q.Content)
	}
	if q.QuestionID != "" {
		t.Errorf("malformed id accepted: %q", q.QuestionID)
	}
	if id, ok := NewExtractor(nil).IDCandidate(`%[AB.45] %[1A2B3C]`); !ok || id != "1A2B3C" {
		t.Errorf("candidate = %q, %v", id, ok)
	}
}

func TestDecomposedInputIsNormalized(t *testing.T) {
	// "Nguồn" spelled with combining marks.
	decomposed := "\\begin{ex}[Ngu\u006f\u0302\u0300n: \"A\"] Q\\end{ex}"
	q, err := Parse(decomposed)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(q.Sources, []string{"A"}) {
		t.Fatalf("sources = %q", q.Sources)
	}
}

func TestContentWithoutEnvironment(t *testing.T) {
	q, err := Parse(`Q \choice{a}{\True b}`)
	if err != nil {
		t.Fatal(err)
	}
	if q.Content != "" {
		t.Fatalf("content = %q", q.Content)
	}
}

func TestInputTooLarge(t *testing.T) {
	p := NewParser(Config{MaxInputBytes: 16})
	_, err := p.Parse(strings.Repeat("x", 17))
	if !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("err = %v", err)
	}
}

func TestCorrectAnswerJSON(t *testing.T) {
	var c CorrectAnswer
	if err := json.Unmarshal([]byte(`["a","b"]`), &c); err != nil || !c.Multi || len(c.Values) != 2 {
		t.Fatalf("got %+v, %v", c, err)
	}
	if err := json.Unmarshal([]byte(`"a"`), &c); err != nil || c.Multi || c.Value != "a" {
		t.Fatalf("got %+v, %v", c, err)
	}
	if err := json.Unmarshal([]byte(`3`), &c); err == nil {
		t.Fatal("expected error for a number")
	}
}

func TestTrueOptionCount(t *testing.T) {
	ex := NewExtractor(nil)
	n := ex.TrueOptionCount(`\choice{\True a}{b}{\True c}`, TypeMC)
	if n != 2 {
		t.Fatalf("count = %d", n)
	}
}
