// Package prelude embeds the standard-library sources compiled into every
// program: the implicit modules and the operator classes of Std.Ops.
package prelude

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed std/*.sk
var stdFS embed.FS

// Source is one embedded standard-library file.
type Source struct {
	Path    string
	Content string
}

// Sources returns the embedded standard-library files in a stable order.
func Sources() []Source {
	entries, err := stdFS.ReadDir("std")
	if err != nil {
		panic(fmt.Sprintf("prelude: reading embedded sources: %v", err))
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		data, err := stdFS.ReadFile("std/" + name)
		if err != nil {
			panic(fmt.Sprintf("prelude: reading %s: %v", name, err))
		}
		sources = append(sources, Source{
			Path:    "std/" + name,
			Content: string(data),
		})
	}
	return sources
}
