// Package templates renders outbound mails from embedded templates. Each mail
// kind has a <kind>.html and an optional <kind>.txt; both read the mail's
// string vars, e.g. {{.name}}.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

//go:embed *.html *.txt
var files embed.FS

// Set holds the parsed templates.
type Set struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// Load parses every embedded template.
func Load() (*Set, error) {
	html, err := htmltemplate.ParseFS(files, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(files, "*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}
	return &Set{html: html, text: text}, nil
}

// Render produces the html and text bodies of a mail. The text body is empty
// when the kind has no text template.
func (s *Set) Render(kind entity.MailKind, vars map[string]string) (string, string, error) {
	name := string(kind)
	page := s.html.Lookup(name + ".html")
	if page == nil {
		return "", "", domainerror.NewMailError(domainerror.ErrCodeMailTemplate, "no template for "+name, domainerror.ErrUnknownMailKind)
	}

	var html bytes.Buffer
	if err := page.Execute(&html, vars); err != nil {
		return "", "", domainerror.NewMailError(domainerror.ErrCodeMailTemplate, "failed to render "+name, err)
	}

	plain := s.text.Lookup(name + ".txt")
	if plain == nil {
		return html.String(), "", nil
	}
	var text bytes.Buffer
	if err := plain.Execute(&text, vars); err != nil {
		return "", "", domainerror.NewMailError(domainerror.ErrCodeMailTemplate, "failed to render "+name, err)
	}
	return html.String(), text.String(), nil
}
