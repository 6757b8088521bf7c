// Command exlint checks question markup files and reports every problem it
// finds. It exits with status 1 when any question has an error.
//
//	exlint [-format text|json] [-workers N] [-suggest] files...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mind-engage/exbank/internal/batch"
	"github.com/mind-engage/exbank/internal/config"
	"github.com/mind-engage/exbank/internal/question"
	"github.com/mind-engage/exbank/internal/validation"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("exlint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "text", "report format: text or json")
	workers := fs.Int("workers", 0, "parallel questions (0 = GOMAXPROCS)")
	suggest := fs.Bool("suggest", false, "include correction suggestions")
	lenient := fs.Bool("lenient-subcount", false, "do not flag brackets that are not subcounts")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 || (*format != "text" && *format != "json") {
		fs.Usage()
		return 2
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := config.LogConfig{Level: level}.NewLogger(stderr)

	docs := make([]batch.Document, 0, fs.NArg())
	for _, name := range fs.Args() {
		b, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(stderr, "exlint: %v\n", err)
			return 2
		}
		docs = append(docs, batch.Document{Name: name, Source: string(b)})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	reports, err := batch.Run(ctx, docs, batch.Options{
		Workers:   *workers,
		Suggest:   *suggest,
		Parser:    question.NewParser(question.Config{Logger: logger}),
		Validator: validation.New(validation.WithStrictSubcount(!*lenient), validation.WithLogger(logger)),
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "exlint: %v\n", err)
		return 2
	}

	sum := batch.Summarize(reports)
	if *format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"summary": sum, "reports": reports})
	} else {
		writeText(stdout, reports, sum)
	}
	if sum.Errors > 0 || sum.Valid < sum.Questions {
		return 1
	}
	return 0
}

func writeText(w io.Writer, reports []batch.Report, sum batch.Summary) {
	for _, r := range reports {
		issues := func(kind string, list []validation.Issue) {
			for _, is := range list {
				fmt.Fprintf(w, "%s:%d: question %d: %s: %s [%s]\n", r.Document, r.Line, r.Index+1, kind, is.Message, is.Code)
			}
		}
		if r.ParseError != "" {
			fmt.Fprintf(w, "%s:%d: question %d: error: %s\n", r.Document, r.Line, r.Index+1, r.ParseError)
		}
		issues("error", r.Syntax.Errors)
		issues("error", r.Structure.Errors)
		issues("warning", r.Syntax.Warnings)
		issues("warning", r.Structure.Warnings)
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "%s:%d: question %d: suggestion (%s): %s\n", r.Document, r.Line, r.Index+1, s.Code, s.Explanation)
		}
	}
	fmt.Fprintf(w, "%d questions, %d valid, %d errors, %d warnings\n", sum.Questions, sum.Valid, sum.Errors, sum.Warnings)
}

