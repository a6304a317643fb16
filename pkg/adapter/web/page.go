package web

import (
	"embed"
	"html/template"
	"net/url"

	"github.com/marmos91/rootshare/pkg/lister"
	"github.com/marmos91/rootshare/pkg/registry"
)

//go:embed templates/*.html
var templateFS embed.FS

var browseTemplate = template.Must(
	template.New("browse.html").
		Funcs(template.FuncMap{
			"browseURL":   browseURL,
			"downloadURL": downloadURL,
		}).
		ParseFS(templateFS, "templates/browse.html"),
)

// browsePage is the data rendered by templates/browse.html.
type browsePage struct {
	Roots   []registry.RootEntry
	Current string
	Parent  string
	Entries []lister.DirectoryEntry

	// Invalid is set when Requested was replaced by the fallback root.
	Invalid   bool
	Requested string
}

// browseURL returns the listing URL of an absolute path. The whole path is a
// single escaped segment, separators included.
func browseURL(path string) string {
	return "/browse/" + url.PathEscape(path)
}

func downloadURL(path string) string {
	return "/download/" + url.PathEscape(path)
}
