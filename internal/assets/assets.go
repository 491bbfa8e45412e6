// Package assets embeds the page shell template and its stylesheet.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed page/*
var pageFS embed.FS

// PageFS returns the embedded page files
func PageFS() fs.FS {
	sub, err := fs.Sub(pageFS, "page")
	if err != nil {
		panic(err)
	}
	return sub
}

// GetPageTemplate returns the HTML shell template source
func GetPageTemplate() ([]byte, error) {
	return pageFS.ReadFile("page/page.html.tmpl")
}

// GetPageCSS returns the inlined stylesheet
func GetPageCSS() ([]byte, error) {
	return pageFS.ReadFile("page/page.css")
}
