// Package assets embeds the page template and the offline seed catalog.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html seed/parks.json
var FS embed.FS

// SeedParks returns the raw JSON of the embedded park catalog.
func SeedParks() ([]byte, error) {
	return FS.ReadFile("seed/parks.json")
}

// Templates returns the directory holding the HTML templates.
func Templates() fs.FS {
	sub, err := fs.Sub(FS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
