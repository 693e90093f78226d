package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sunholo/skiff/internal/source"
)

func TestBagAccumulates(t *testing.T) {
	bag := &Bag{}
	if bag.HasErrors() {
		t.Fatal("empty bag reports errors")
	}
	bag.Add(New(PhaseResolve, UnknownFunction, nil, "unknown function %s", "foo"))
	bag.Add(New(PhaseTypecheck, TypeMismatch, nil, "type mismatch"))
	if !bag.HasErrors() || len(bag.Errors()) != 2 {
		t.Fatalf("bag = %+v", bag.Errors())
	}
	summary := bag.Summary()
	if !strings.Contains(summary, "UnknownFunction: unknown function foo") {
		t.Errorf("summary = %q", summary)
	}
}

func TestReporterRendersSourceSlice(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	files := source.NewFileManager()
	files.Register("a.sk", "module A where\n\nf = missing 1\n")
	locs := source.NewTable()
	id := locs.Add("a.sk", source.Span{StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 12})

	err := New(PhaseResolve, UnknownFunction, []source.LocationID{id}, "unknown function missing")
	var out bytes.Buffer
	NewReporter(files, locs).Render(&out, err)

	text := out.String()
	if !strings.Contains(text, "error: UnknownFunction: unknown function missing") {
		t.Errorf("missing header in:\n%s", text)
	}
	if !strings.Contains(text, "a.sk:3:5") {
		t.Errorf("missing position in:\n%s", text)
	}
	if !strings.Contains(text, "f = missing 1") {
		t.Errorf("missing source line in:\n%s", text)
	}
	if !strings.Contains(text, "^^^^^^^") {
		t.Errorf("missing caret line in:\n%s", text)
	}
}
