package question

import (
	"encoding/json"
	"fmt"
)

// Type is the question dialect detected from the markup.
type Type string

const (
	TypeMC Type = "MC" // multiple choice, one correct option
	TypeTF Type = "TF" // true/false statements, any subset correct
	TypeSA Type = "SA" // short answer
	TypeES Type = "ES" // essay
)

// Valid reports whether t is one of the four known types.
func (t Type) Valid() bool {
	switch t {
	case TypeMC, TypeTF, TypeSA, TypeES:
		return true
	}
	return false
}

// Subcount is the short human lookup code, e.g. [AB.45].
type Subcount struct {
	Prefix string `json:"prefix"`
	Number string `json:"number"`
	FullID string `json:"full_id"`
}

// CorrectAnswer holds a single value for MC/SA and a list for TF. Essays
// leave both empty. It encodes to JSON as a string or an array accordingly.
type CorrectAnswer struct {
	Value  string
	Values []string
	Multi  bool
}

// Single builds a single-valued answer.
func Single(v string) CorrectAnswer { return CorrectAnswer{Value: v} }

// Multiple builds a list-valued answer. A nil list is stored as empty.
func Multiple(vs []string) CorrectAnswer {
	if vs == nil {
		vs = []string{}
	}
	return CorrectAnswer{Values: vs, Multi: true}
}

// Empty reports whether no correct answer was found.
func (c CorrectAnswer) Empty() bool {
	if c.Multi {
		return len(c.Values) == 0
	}
	return c.Value == ""
}

// List returns the answer as a slice regardless of its shape.
func (c CorrectAnswer) List() []string {
	if c.Multi {
		return c.Values
	}
	if c.Value == "" {
		return nil
	}
	return []string{c.Value}
}

// Contains reports whether s is one of the correct values.
func (c CorrectAnswer) Contains(s string) bool {
	for _, v := range c.List() {
		if v == s {
			return true
		}
	}
	return false
}

func (c CorrectAnswer) MarshalJSON() ([]byte, error) {
	if c.Multi {
		return json.Marshal(c.Values)
	}
	return json.Marshal(c.Value)
}

func (c *CorrectAnswer) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = Single(s)
		return nil
	}
	var vs []string
	if err := json.Unmarshal(b, &vs); err != nil {
		return fmt.Errorf("correct answer must be string or string array: %w", err)
	}
	*c = Multiple(vs)
	return nil
}

// Parsed is the structured form of one question document. Each call to Parse
// returns a fresh value owned by the caller.
type Parsed struct {
	Type          Type          `json:"type"`
	Content       string        `json:"content"`
	CorrectAnswer CorrectAnswer `json:"correct_answer"`
	QuestionID    string        `json:"question_id,omitempty"`
	Subcount      *Subcount     `json:"subcount,omitempty"`
	Sources       []string      `json:"sources"`
	Solutions     []string      `json:"solutions"`
	Answers       []string      `json:"answers"`
}
