package render

import "sort"

// Format is a named output view.
type Format struct {
	Name        string
	ContentType string
	Render      func(r *Renderer, raw string) string
}

// Registry of formats by name (e.g. "html", "text").
var registry = map[string]Format{}

// Register a format. Call from init().
func Register(f Format) { registry[f.Name] = f }

// Lookup returns a registered format.
func Lookup(name string) (Format, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names lists the registered formats, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func init() {
	Register(Format{Name: "html", ContentType: "text/html; charset=utf-8", Render: (*Renderer).HTML})
	Register(Format{Name: "text", ContentType: "text/plain; charset=utf-8", Render: (*Renderer).PlainText})
}

var defaultRenderer = New(Config{})

// HTML renders raw with a default Renderer.
func HTML(raw string) string { return defaultRenderer.HTML(raw) }

// PlainText renders raw with a default Renderer.
func PlainText(raw string) string { return defaultRenderer.PlainText(raw) }
