package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"sort"
	"strings"
	"sync"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// Each email is three files: <name>.subject.tmpl, <name>.text.tmpl and
// <name>.html.tmpl. Subjects and bodies are parsed once into two sets.
var (
	loadOnce sync.Once
	textSet  *texttpl.Template
	htmlSet  *htmpl.Template
	loadErr  error
)

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
	}
	return value
}

func load() error {
	loadOnce.Do(func() {
		textSet, loadErr = texttpl.New("").Funcs(texttpl.FuncMap{"default": defaultFn}).
			ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
		if loadErr != nil {
			return
		}
		htmlSet, loadErr = htmpl.New("").Funcs(htmpl.FuncMap{"default": defaultFn}).
			ParseFS(FS, "*.html.tmpl")
	})
	return loadErr
}

// Names lists the emails that can be rendered.
func Names() []string {
	if load() != nil {
		return nil
	}
	var names []string
	for _, t := range htmlSet.Templates() {
		if name, ok := strings.CutSuffix(t.Name(), ".html.tmpl"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Render renders the subject (trimmed), text and HTML parts of email name.
func Render(name string, data any) (subject, text, html string, err error) {
	if err := load(); err != nil {
		return "", "", "", fmt.Errorf("load templates: %w", err)
	}
	if htmlSet.Lookup(name+".html.tmpl") == nil {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	exec := func(file string, run func() error) (string, error) {
		buf.Reset()
		if err := run(); err != nil {
			return "", fmt.Errorf("exec %q: %w", file, err)
		}
		return buf.String(), nil
	}
	textPart := func(file string) (string, error) {
		return exec(file, func() error { return textSet.ExecuteTemplate(&buf, file, data) })
	}

	if subject, err = textPart(name + ".subject.tmpl"); err != nil {
		return "", "", "", err
	}
	if text, err = textPart(name + ".text.tmpl"); err != nil {
		return "", "", "", err
	}
	file := name + ".html.tmpl"
	if html, err = exec(file, func() error { return htmlSet.ExecuteTemplate(&buf, file, data) }); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
