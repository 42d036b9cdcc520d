// Package web embeds the page templates and browser assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

var funcs = template.FuncMap{
	"humanSize": func(n int64) string {
		if n < 0 {
			n = 0
		}
		return humanize.Bytes(uint64(n))
	},
	"humanTime": humanize.Time,
}

// Templates parses every page template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

// Static serves the browser assets rooted at static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // static/ is embedded at build time
	}
	return http.FS(sub)
}
