package lexer

import (
	"testing"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/source"
)

func lex(t *testing.T, input string) ([]Token, *diag.Bag) {
	t.Helper()
	errors := &diag.Bag{}
	locs := source.NewTable()
	l := New("test.sk", input, locs, errors)
	return l.Tokens(), errors
}

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexBasicTokens(t *testing.T) {
	tokens, errors := lex(t, `f x = x + 1`)
	if errors.HasErrors() {
		t.Fatalf("unexpected errors: %s", errors.Summary())
	}
	want := []Kind{Ident, Ident, Equals, Ident, OpPlus, IntLit, EOF}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexModulePath(t *testing.T) {
	tokens, _ := lex(t, `Std.Ops.opAdd`)
	if tokens[0].Kind != Path || tokens[0].Text != "Std.Ops.opAdd" {
		t.Errorf("token = %+v, want path Std.Ops.opAdd", tokens[0])
	}
}

func TestLexFieldAccessStaysSplit(t *testing.T) {
	tokens, _ := lex(t, `r.name`)
	want := []Kind{Ident, Dot, Ident, EOF}
	got := kinds(tokens)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
}

func TestLexLiterals(t *testing.T) {
	tokens, errors := lex(t, `42 3.5 "hi\n" 'c' true false`)
	if errors.HasErrors() {
		t.Fatalf("unexpected errors: %s", errors.Summary())
	}
	if tokens[0].Kind != IntLit || tokens[0].Int != 42 {
		t.Errorf("int token = %+v", tokens[0])
	}
	if tokens[1].Kind != FloatLit || tokens[1].Float != 3.5 {
		t.Errorf("float token = %+v", tokens[1])
	}
	if tokens[2].Kind != StringLit || tokens[2].Text != "hi\n" {
		t.Errorf("string token = %+v", tokens[2])
	}
	if tokens[3].Kind != CharLit || tokens[3].Char != 'c' {
		t.Errorf("char token = %+v", tokens[3])
	}
	if tokens[4].Kind != KwTrue || tokens[5].Kind != KwFalse {
		t.Errorf("bool tokens = %v %v", tokens[4].Kind, tokens[5].Kind)
	}
}

func TestLexComments(t *testing.T) {
	tokens, _ := lex(t, "x -- a comment\ny")
	want := []Kind{Ident, Ident, EOF}
	got := kinds(tokens)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
}

func TestLayoutInsertsBlocks(t *testing.T) {
	input := "module A where\nmain = do\n  f 1\n  g 2\n"
	tokens, errors := lex(t, input)
	if errors.HasErrors() {
		t.Fatalf("unexpected errors: %s", errors.Summary())
	}
	want := []Kind{
		KwModule, Ident, KwWhere,
		LBrace, Ident, Equals, KwDo,
		LBrace, Ident, IntLit, Semicolon, Ident, IntLit, RBrace,
		RBrace, EOF,
	}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLayoutSeparatesTopLevelItems(t *testing.T) {
	input := "module A where\nf x = x\ng y = y\n"
	tokens, _ := lex(t, input)
	semicolons := 0
	for _, tok := range tokens {
		if tok.Kind == Semicolon {
			semicolons++
		}
	}
	if semicolons != 1 {
		t.Errorf("got %d item separators, want 1", semicolons)
	}
}

func TestLexUnsupportedCharacter(t *testing.T) {
	_, errors := lex(t, "f = @")
	if !errors.HasErrors() {
		t.Fatal("expected an unsupported-character error")
	}
	if errors.Errors()[0].Kind != diag.UnsupportedCharacter {
		t.Errorf("kind = %s", errors.Errors()[0].Kind)
	}
}
