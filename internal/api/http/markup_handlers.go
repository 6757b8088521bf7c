package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/mind-engage/exbank/internal/correction"
	"github.com/mind-engage/exbank/internal/question"
	"github.com/mind-engage/exbank/internal/render"
	"github.com/mind-engage/exbank/internal/validation"
)

var errTooLarge = errors.New("request body too large")

// readMarkup returns the request body as markup. JSON bodies carry it in a
// "markup" field; anything else is taken as the raw text.
func readMarkup(w http.ResponseWriter, r *http.Request, max int64) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, max))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", errTooLarge
		}
		return "", err
	}
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/json" {
		var in struct {
			Markup string `json:"markup"`
		}
		if err := json.Unmarshal(body, &in); err != nil {
			return "", err
		}
		return in.Markup, nil
	}
	return string(body), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func markupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errTooLarge), errors.Is(err, question.ErrInputTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, question.ErrInternal):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
	}
}

// POST /v1/parse
func ParseHandler(p *question.Parser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := readMarkup(w, r, int64(p.MaxInputBytes()))
		if err != nil {
			markupError(w, err)
			return
		}
		q, err := p.Parse(raw)
		if err != nil {
			markupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// POST /v1/validate
func ValidateHandler(v *validation.Validator, maxBytes int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := readMarkup(w, r, int64(maxBytes))
		if err != nil {
			markupError(w, err)
			return
		}
		syn, st := v.Syntax(raw), v.Structure(raw)
		writeJSON(w, http.StatusOK, map[string]any{
			"is_valid":  syn.IsValid && st.IsValid,
			"syntax":    syn,
			"structure": st,
		})
	}
}

// POST /v1/suggest
func SuggestHandler(s *correction.Suggester, maxBytes int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := readMarkup(w, r, int64(maxBytes))
		if err != nil {
			markupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Suggest(raw))
	}
}

// POST /v1/render?format=html|text
func RenderHandler(rd *render.Renderer, maxBytes int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := lookupFormat(r)
		if !ok {
			http.Error(w, "unknown format (want one of "+strings.Join(render.Names(), ", ")+")", http.StatusBadRequest)
			return
		}
		raw, err := readMarkup(w, r, int64(maxBytes))
		if err != nil {
			markupError(w, err)
			return
		}
		w.Header().Set("Content-Type", f.ContentType)
		_, _ = io.WriteString(w, f.Render(rd, raw))
	}
}

func lookupFormat(r *http.Request) (render.Format, bool) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = "html"
	}
	return render.Lookup(name)
}
