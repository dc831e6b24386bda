// Package docs embeds the markdown help topics served by `rigup docs`.
package docs

import "embed"

//go:embed *.md
var FS embed.FS

// Topics returns the available topic names, without the .md extension.
func Topics() []string {
	entries, err := FS.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if len(name) > 3 && name[len(name)-3:] == ".md" {
			names = append(names, name[:len(name)-3])
		}
	}
	return names
}

// Topic returns the markdown source of one topic, or false when it does
// not exist.
func Topic(name string) (string, bool) {
	data, err := FS.ReadFile(name + ".md")
	if err != nil {
		return "", false
	}
	return string(data), true
}
