package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Letter is the shared layout of every outgoing message. Each section is
// one language block; sections are rendered in order.
type Letter struct {
	Title    string
	Sections []Section
	Footer   []string
}

// Section is one language block of a letter
type Section struct {
	Lang       string
	Heading    string
	Paragraphs []string
	Fields     []Field
	QuoteLabel string
	Quote      string
	Closing    []string
}

// Field is a labelled value shown as a table row
type Field struct {
	Label string
	Value string
}

// Renderer turns a Letter into plain-text and HTML bodies
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewRenderer parses the embedded letter templates
func NewRenderer() (*Renderer, error) {
	text, err := texttemplate.ParseFS(templateFS, "templates/letter.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/letter.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	return &Renderer{text: text, html: html}, nil
}

// MustNewRenderer is NewRenderer that panics on error
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render produces the text and HTML bodies for l
func (r *Renderer) Render(l Letter) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := r.text.ExecuteTemplate(&tb, "letter.txt.tmpl", l); err != nil {
		return "", "", fmt.Errorf("render text letter: %w", err)
	}
	if err := r.html.ExecuteTemplate(&hb, "letter.html.tmpl", l); err != nil {
		return "", "", fmt.Errorf("render html letter: %w", err)
	}
	return tb.String(), hb.String(), nil
}
