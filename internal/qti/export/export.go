// Package export writes stored exams as IMS QTI 2.1 content packages.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/mind-engage/exbank/internal/exam"
	"github.com/mind-engage/exbank/internal/question"
)

const (
	qtiNS        = "http://www.imsglobal.org/xsd/imsqti_v2p1"
	manifestNS   = "http://www.imsglobal.org/xsd/imscp_v1p1"
	itemResource = "imsqti_item_xmlv2p1"
)

// Options tunes the package.
type Options struct {
	// IncludeSource adds each question's markup next to its item.
	IncludeSource bool
	// Text converts markup fragments into item text (default: as written).
	Text func(string) string
}

// BuildPackage writes one item per question plus imsmanifest.xml.
func BuildPackage(ex exam.Exam, opts Options) ([]byte, error) {
	if opts.Text == nil {
		opts.Text = func(s string) string { return s }
	}
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	mf := imsManifest{
		Xmlns:      manifestNS,
		Identifier: "MANIFEST-" + ex.ID,
		Resources:  []imsResource{},
	}
	for i, q := range ex.Questions {
		ident := itemIdentifier(i, q)
		itemName := ident + ".xml"
		res := imsResource{
			Identifier: ident,
			Type:       itemResource,
			Href:       itemName,
			Files:      []imsFile{{Href: itemName}},
		}
		item, err := xml.MarshalIndent(buildItem(ident, q, opts.Text), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", ident, err)
		}
		if err := writeFile(zw, itemName, []byte(xml.Header), item); err != nil {
			return nil, err
		}
		if opts.IncludeSource {
			src := "source/" + ident + ".tex"
			if err := writeFile(zw, src, []byte(q.Raw)); err != nil {
				return nil, err
			}
			res.Files = append(res.Files, imsFile{Href: src})
		}
		mf.Resources = append(mf.Resources, res)
	}
	b, err := xml.MarshalIndent(mf, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeFile(zw, "imsmanifest.xml", []byte(xml.Header), b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(zw *zip.Writer, name string, parts ...[]byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Unix(0, 0).UTC()})
	if err != nil {
		return err
	}
	for _, p := range parts {
		if _, err := w.Write(p); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// itemIdentifier prefers the question's own ID; QTI identifiers must not
// start with a digit.
func itemIdentifier(i int, q exam.Question) string {
	if q.QuestionID != "" {
		return "Q-" + q.QuestionID
	}
	return fmt.Sprintf("Q%03d-%s", i+1, q.ID)
}

// --- mini XML model for manifest (export only) ---
type imsManifest struct {
	XMLName    xml.Name      `xml:"manifest"`
	Xmlns      string        `xml:"xmlns,attr,omitempty"`
	Identifier string        `xml:"identifier,attr"`
	Resources  []imsResource `xml:"resources>resource"`
}
type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	Href       string    `xml:"href,attr"`
	Files      []imsFile `xml:"file"`
}
type imsFile struct {
	Href string `xml:"href,attr"`
}

// --- QTI 2.1 item ---
type assessmentItem struct {
	XMLName       xml.Name             `xml:"assessmentItem"`
	Xmlns         string               `xml:"xmlns,attr"`
	Identifier    string               `xml:"identifier,attr"`
	Title         string               `xml:"title,attr"`
	Adaptive      bool                 `xml:"adaptive,attr"`
	TimeDependent bool                 `xml:"timeDependent,attr"`
	Response      *responseDeclaration `xml:"responseDeclaration,omitempty"`
	Body          itemBody             `xml:"itemBody"`
	Feedback      []modalFeedback      `xml:"modalFeedback,omitempty"`
}

type responseDeclaration struct {
	Identifier  string   `xml:"identifier,attr"`
	Cardinality string   `xml:"cardinality,attr"`
	BaseType    string   `xml:"baseType,attr"`
	Correct     []string `xml:"correctResponse>value"`
}

type itemBody struct {
	Prompt   string             `xml:"p"`
	Choice   *choiceInteraction `xml:"choiceInteraction,omitempty"`
	Text     *textInteraction   `xml:"textEntryInteraction,omitempty"`
	Extended *textInteraction   `xml:"extendedTextInteraction,omitempty"`
}

type choiceInteraction struct {
	ResponseIdentifier string         `xml:"responseIdentifier,attr"`
	Shuffle            bool           `xml:"shuffle,attr"`
	MaxChoices         int            `xml:"maxChoices,attr"`
	Choices            []simpleChoice `xml:"simpleChoice"`
}

type simpleChoice struct {
	Identifier string `xml:"identifier,attr"`
	Text       string `xml:",chardata"`
}

type textInteraction struct {
	ResponseIdentifier string `xml:"responseIdentifier,attr"`
}

type modalFeedback struct {
	OutcomeIdentifier string `xml:"outcomeIdentifier,attr"`
	Identifier        string `xml:"identifier,attr"`
	ShowHide          string `xml:"showHide,attr"`
	Text              string `xml:",chardata"`
}

func buildItem(ident string, q exam.Question, text func(string) string) assessmentItem {
	it := assessmentItem{
		Xmlns:      qtiNS,
		Identifier: ident,
		Title:      ident,
		Body:       itemBody{Prompt: text(q.Content)},
	}
	switch q.Type {
	case question.TypeMC, question.TypeTF:
		ci := &choiceInteraction{ResponseIdentifier: "RESPONSE", MaxChoices: 1}
		decl := &responseDeclaration{Identifier: "RESPONSE", Cardinality: "single", BaseType: "identifier"}
		if q.Type == question.TypeTF {
			// pick every true statement
			ci.MaxChoices = 0
			decl.Cardinality = "multiple"
		}
		for i, a := range q.Answers {
			id := fmt.Sprintf("C%d", i+1)
			ci.Choices = append(ci.Choices, simpleChoice{Identifier: id, Text: text(a)})
			if (q.Type == question.TypeMC && a == q.CorrectAnswer.Value && len(decl.Correct) == 0) ||
				(q.Type == question.TypeTF && q.CorrectAnswer.Contains(a)) {
				decl.Correct = append(decl.Correct, id)
			}
		}
		it.Response, it.Body.Choice = decl, ci
	case question.TypeSA:
		it.Response = &responseDeclaration{Identifier: "RESPONSE", Cardinality: "single", BaseType: "string", Correct: []string{q.CorrectAnswer.Value}}
		it.Body.Text = &textInteraction{ResponseIdentifier: "RESPONSE"}
	case question.TypeES:
		it.Response = &responseDeclaration{Identifier: "RESPONSE", Cardinality: "single", BaseType: "string"}
		it.Body.Extended = &textInteraction{ResponseIdentifier: "RESPONSE"}
	}
	for i, s := range q.Solutions {
		it.Feedback = append(it.Feedback, modalFeedback{
			OutcomeIdentifier: "FEEDBACK",
			Identifier:        fmt.Sprintf("SOLUTION%d", i+1),
			ShowHide:          "show",
			Text:              text(s),
		})
	}
	return it
}

// Write streams a package to w.
func Write(w io.Writer, ex exam.Exam, opts Options) error {
	b, err := BuildPackage(ex, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
