package report

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
	"github.com/valyala/bytebufferpool"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewHtmlEngine loads the report templates, from templateDir when set so
// deployments can override the layout, otherwise from the embedded copies.
func NewHtmlEngine(templateDir string) (*html.Engine, error) {
	var engine *html.Engine
	if templateDir != "" {
		engine = html.NewFileSystem(http.Dir(templateDir), ".html")
	} else {
		renderFS, _ := fs.Sub(templateFS, "templates")
		engine = html.NewFileSystem(http.FS(renderFS), ".html")
	}
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return engine, nil
}

func renderHTML(engine *html.Engine, templateName string, data any) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := engine.Render(buf, templateName, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
