package api

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Template renders the embedded HTML pages.
type Template struct {
	templates *template.Template
}

// NewTemplate parses the embedded pages.
func NewTemplate() *Template {
	funcs := template.FuncMap{
		"markdown":  renderMarkdown,
		"json":      toJS,
		"withQuery": withQuery,
	}
	return &Template{
		templates: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// renderMarkdown converts glossary markdown to HTML. The glossary is a
// trusted file shipped with the dataset.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		zap.L().Warn("api: glossary markdown failed, showing raw text", zap.Error(err))
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func toJS(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// withQuery appends an already-encoded query string to path.
func withQuery(path, query string) template.URL {
	if query == "" {
		return template.URL(path)
	}
	return template.URL(path + "?" + query)
}
