package grading

import (
	"context"
	"errors"
	"testing"

	"github.com/mind-engage/exbank/internal/question"
)

func parsed(t *testing.T, raw string) question.Parsed {
	t.Helper()
	p, err := question.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestChoice(t *testing.T) {
	q := FromParsed(parsed(t, `\begin{ex}Chọn. \choice{1}{\True 2}{3}{4}\end{ex}`), 1)
	g := NewDefaultGrader()
	tests := []struct {
		resp any
		want float64
	}{
		{"B", 1},
		{"b", 1},
		{"B.", 1},
		{"2", 1},
		{"A", 0},
		{"E", 0},
	}
	for _, tt := range tests {
		res, err := g.Grade(context.Background(), q, tt.resp)
		if err != nil {
			t.Fatal(err)
		}
		if res.AutoPoints != tt.want {
			t.Errorf("Grade(%v) = %v, want %v", tt.resp, res.AutoPoints, tt.want)
		}
	}
	if _, err := g.Grade(context.Background(), q, 2); !errors.Is(err, ErrBadResponse) {
		t.Fatalf("err = %v", err)
	}
}

func TestTrueFalse(t *testing.T) {
	q := FromParsed(parsed(t, `\begin{ex}Xét. \choiceTF{\True s1}{s2}{\True s3}{s4}\end{ex}`), 1)
	tests := []struct {
		name    string
		resp    any
		partial bool
		want    float64
	}{
		{"all right", []string{"a", "c"}, true, 1},
		{"by text", []any{"s1", "s3"}, true, 1},
		{"three right", []string{"a"}, true, 0.75},
		{"none judged true", []string{}, true, 0.5},
		{"all wrong", []string{"b", "d"}, true, 0},
		{"strict", []string{"a"}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewDefaultGrader(WithPartialTF(tt.partial))
			res, err := g.Grade(context.Background(), q, tt.resp)
			if err != nil {
				t.Fatal(err)
			}
			if res.AutoPoints != tt.want {
				t.Errorf("got %v, want %v (%v)", res.AutoPoints, tt.want, res.Feedback)
			}
		})
	}
}

func TestShortAnswer(t *testing.T) {
	g := NewDefaultGrader()
	num := FromParsed(parsed(t, `\begin{ex}Tính. \shortans{'2,5'}\end{ex}`), 1)
	word := FromParsed(parsed(t, `\begin{ex}Thủ đô? \shortans{'Hà Nội'}\end{ex}`), 1)
	tests := []struct {
		q    Q
		resp string
		want float64
	}{
		{num, "2.5", 1},
		{num, " 2,5 ", 1},
		{num, "2.6", 0},
		{word, "hà nội", 1},
		{word, "Hà Nội.", 1},
		{word, "Ha Nội", 0.5},
		{word, "Huế", 0},
	}
	for _, tt := range tests {
		res, err := g.Grade(context.Background(), tt.q, tt.resp)
		if err != nil {
			t.Fatal(err)
		}
		if res.AutoPoints != tt.want {
			t.Errorf("Grade(%q) = %v, want %v", tt.resp, res.AutoPoints, tt.want)
		}
	}
}

func TestEssayNeedsManual(t *testing.T) {
	q := FromParsed(parsed(t, `\begin{ex}Chứng minh rằng $a^2 \ge 0$.\end{ex}`), 2)
	res, err := NewDefaultGrader().Grade(context.Background(), q, "vì bình phương")
	if err != nil || !res.NeedsManual || res.AutoPoints != 0 || res.MaxPoints != 2 {
		t.Fatalf("res = %+v err=%v", res, err)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"hà nội", "ha nội", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTextNormalization(t *testing.T) {
	tests := []struct {
		in, norm, folded string
	}{
		{"$5$", "5", "5"},
		{`\(x+1\)`, "x+1", "x+1"},
		{"  Đúng. ", "đúng", "dung"},
		{"Hà  Nội", "hà nội", "ha noi"},
		// decomposed input folds the same way
		{"Ngu\u006f\u0302\u0300n", "nguồn", "nguon"},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.norm {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.norm)
		}
		if got := fold(tt.in); got != tt.folded {
			t.Errorf("fold(%q) = %q, want %q", tt.in, got, tt.folded)
		}
	}
}

func TestShortAnswerMathAndDiacritics(t *testing.T) {
	g := NewDefaultGrader()
	num := FromParsed(parsed(t, `\begin{ex}Tính. \shortans{'$5$'}\end{ex}`), 1)
	word := FromParsed(parsed(t, `\begin{ex}Mệnh đề trên? \shortans{'đúng'}\end{ex}`), 1)
	tests := []struct {
		q    Q
		resp string
		want float64
	}{
		{num, "5", 1},
		{num, "$5$", 1},
		{word, "Đúng", 1},
		{word, "dung", 0.5},
		{word, "sai", 0},
	}
	for _, tt := range tests {
		res, err := g.Grade(context.Background(), tt.q, tt.resp)
		if err != nil {
			t.Fatal(err)
		}
		if res.AutoPoints != tt.want {
			t.Errorf("Grade(%q) = %v, want %v", tt.resp, res.AutoPoints, tt.want)
		}
	}
}
