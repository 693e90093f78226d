package source

import "testing"

func TestNormalizeStripsBOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("module A where")...)
	got := string(Normalize(src))
	if got != "module A where" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestNormalizeNFC(t *testing.T) {
	// "e" + combining acute accent normalises to a single rune.
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"
	if got := string(Normalize([]byte(decomposed))); got != composed {
		t.Errorf("Normalize = %q, want %q", got, composed)
	}
}

func TestSpanMerge(t *testing.T) {
	a := Span{StartLine: 1, StartCol: 5, EndLine: 1, EndCol: 8}
	b := Span{StartLine: 1, StartCol: 2, EndLine: 2, EndCol: 1}
	merged := a.Merge(b)
	want := Span{StartLine: 1, StartCol: 2, EndLine: 2, EndCol: 1}
	if merged != want {
		t.Errorf("Merge = %+v, want %+v", merged, want)
	}
}

func TestTable(t *testing.T) {
	table := NewTable()
	id := table.Add("a.sk", Span{StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 4})
	loc := table.Get(id)
	if loc.File != "a.sk" || loc.Span.StartLine != 3 {
		t.Errorf("Get = %+v", loc)
	}
	if table.Get(NoLocation) != (Location{}) {
		t.Error("NoLocation should yield the zero location")
	}
}

func TestFileManagerLines(t *testing.T) {
	fm := NewFileManager()
	fm.Register("x.sk", "first\nsecond\nthird")
	if got := fm.Line("x.sk", 2); got != "second" {
		t.Errorf("Line(2) = %q", got)
	}
	if got := fm.Line("x.sk", 9); got != "" {
		t.Errorf("Line(9) = %q, want empty", got)
	}
}
