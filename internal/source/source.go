// Package source tracks files, spans and the location table. Every
// syntactic item the compiler ever creates is tagged with a LocationID at
// parse time; the id stays attached to the item's descendants across all
// later passes.
package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/sunholo/skiff/internal/store"
)

// Span is a half-open character range inside one file.
type Span struct {
	StartLine int // 1-based
	StartCol  int // 1-based
	EndLine   int
	EndCol    int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.StartLine, s.StartCol)
}

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	r := s
	if other.StartLine < r.StartLine || (other.StartLine == r.StartLine && other.StartCol < r.StartCol) {
		r.StartLine, r.StartCol = other.StartLine, other.StartCol
	}
	if other.EndLine > r.EndLine || (other.EndLine == r.EndLine && other.EndCol > r.EndCol) {
		r.EndLine, r.EndCol = other.EndLine, other.EndCol
	}
	return r
}

// LocationID identifies one entry in the location table.
type LocationID int

// NoLocation marks items that have no source position (compiler-generated).
const NoLocation LocationID = -1

// Location is a file path plus a span.
type Location struct {
	File string
	Span Span
}

// Table is the append-only location table.
type Table struct {
	items *store.Container[LocationID, Location]
}

// NewTable creates an empty location table.
func NewTable() *Table {
	return &Table{items: store.New[LocationID, Location]()}
}

// Add registers a location and returns its id.
func (t *Table) Add(file string, span Span) LocationID {
	return t.items.Add(Location{File: file, Span: span})
}

// Get returns the location for id. NoLocation yields a zero Location.
func (t *Table) Get(id LocationID) Location {
	if id == NoLocation {
		return Location{}
	}
	return t.items.Get(id)
}

// Len returns the number of registered locations.
func (t *Table) Len() int {
	return t.items.Len()
}

// FileManager reads and caches source files. Contents are normalised once
// at read time so downstream consumers always see NFC text.
type FileManager struct {
	contents map[string]string
	lines    map[string][]string
}

// NewFileManager creates an empty file manager.
func NewFileManager() *FileManager {
	return &FileManager{
		contents: make(map[string]string),
		lines:    make(map[string][]string),
	}
}

// Read loads path from disk, normalises it and caches the result.
func (fm *FileManager) Read(path string) (string, error) {
	if content, ok := fm.contents[path]; ok {
		return content, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	content := string(Normalize(data))
	fm.Register(path, content)
	return content, nil
}

// Register stores already-loaded content under path. Used for embedded
// prelude sources and tests.
func (fm *FileManager) Register(path, content string) {
	fm.contents[path] = content
	fm.lines[path] = strings.Split(content, "\n")
}

// Line returns the given 1-based source line, or "" if unknown.
func (fm *FileManager) Line(path string, line int) string {
	ls, ok := fm.lines[path]
	if !ok || line < 1 || line > len(ls) {
		return ""
	}
	return ls[line-1]
}
