package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const good = `\begin{ex}%[1A2B3-C][AB.45]
Giá trị của $1+1$ bằng bao nhiêu?
\choice
{$1$}
{\True $2$}
{$3$}
{$4$}
\loigiai{Ta có $1+1=2$.}
\end{ex}
`

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunClean(t *testing.T) {
	var out, errb bytes.Buffer
	code := run([]string{write(t, "good.tex", good)}, &out, &errb)
	if code != 0 {
		t.Fatalf("exit %d\n%s%s", code, out.String(), errb.String())
	}
	if !strings.Contains(out.String(), "1 questions, 1 valid, 0 errors") {
		t.Fatalf("got %s", out.String())
	}
}

func TestRunReportsErrors(t *testing.T) {
	bad := write(t, "bad.tex", good+"\n"+`\begin{ex}Chọn đáp án. \choice`)
	var out, errb bytes.Buffer
	code := run([]string{"-suggest", bad}, &out, &errb)
	if code != 1 {
		t.Fatalf("exit %d", code)
	}
	s := out.String()
	if !strings.Contains(s, "bad.tex:11: question 2: error:") || !strings.Contains(s, "suggestion (") {
		t.Fatalf("got\n%s", s)
	}
}

func TestRunJSON(t *testing.T) {
	var out, errb bytes.Buffer
	run([]string{"-format", "json", write(t, "good.tex", good)}, &out, &errb)
	var doc struct {
		Summary struct {
			Questions int `json:"questions"`
			Valid     int `json:"valid"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("%v\n%s", err, out.String())
	}
	if doc.Summary.Questions != 1 || doc.Summary.Valid != 1 {
		t.Fatalf("summary = %+v", doc.Summary)
	}
}

func TestRunUsage(t *testing.T) {
	var out, errb bytes.Buffer
	if code := run(nil, &out, &errb); code != 2 {
		t.Fatalf("exit %d", code)
	}
	if code := run([]string{"-format", "xml", "x.tex"}, &out, &errb); code != 2 {
		t.Fatalf("exit %d", code)
	}
	if code := run([]string{filepath.Join(t.TempDir(), "missing.tex")}, &out, &errb); code != 2 {
		t.Fatalf("exit %d", code)
	}
}
