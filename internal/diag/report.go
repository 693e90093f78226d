package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/sunholo/skiff/internal/source"
)

var (
	errHeader = color.New(color.FgRed, color.Bold).SprintFunc()
	errKind   = color.New(color.Bold).SprintFunc()
	position  = color.New(color.FgCyan).SprintFunc()
	caret     = color.New(color.FgYellow).SprintFunc()
)

// Reporter renders structured errors with their source slices.
type Reporter struct {
	files *source.FileManager
	locs  *source.Table
}

// NewReporter creates a reporter over the given file manager and location
// table.
func NewReporter(files *source.FileManager, locs *source.Table) *Reporter {
	return &Reporter{files: files, locs: locs}
}

// Render writes one error, with one source slice per attached location.
func (r *Reporter) Render(w io.Writer, e *Error) {
	fmt.Fprintf(w, "%s %s: %s\n", errHeader("error:"), errKind(string(e.Kind)), e.Msg)
	for _, id := range e.Locations {
		if id == source.NoLocation {
			continue
		}
		loc := r.locs.Get(id)
		fmt.Fprintf(w, "  %s %s:%d:%d\n", position("-->"), loc.File, loc.Span.StartLine, loc.Span.StartCol)
		line := r.files.Line(loc.File, loc.Span.StartLine)
		if line == "" {
			continue
		}
		fmt.Fprintf(w, "   | %s\n", line)
		width := loc.Span.EndCol - loc.Span.StartCol
		if loc.Span.EndLine != loc.Span.StartLine || width < 1 {
			width = 1
		}
		fmt.Fprintf(w, "   | %s%s\n", strings.Repeat(" ", loc.Span.StartCol-1), caret(strings.Repeat("^", width)))
	}
}

// RenderAll writes every error in the bag.
func (r *Reporter) RenderAll(w io.Writer, bag *Bag) {
	for _, e := range bag.Errors() {
		r.Render(w, e)
	}
}
