// Package parser turns the token stream into the surface syntax tree. It
// is a plain recursive-descent parser; layout has already reduced blocks
// to brace/semicolon delimited lists.
package parser

import (
	"strings"
	"unicode"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/lexer"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
)

// Parser parses one file into the shared surface program.
type Parser struct {
	file    string
	tokens  []lexer.Token
	pos     int
	program *syntax.Program
	locs    *source.Table
	errors  *diag.Bag
}

// New creates a parser over a token stream.
func New(file string, tokens []lexer.Token, program *syntax.Program, locs *source.Table, errors *diag.Bag) *Parser {
	return &Parser{
		file:    file,
		tokens:  tokens,
		program: program,
		locs:    locs,
		errors:  errors,
	}
}

// ParseFile parses a file containing source text, registering its modules.
func ParseFile(file, content string, program *syntax.Program, locs *source.Table, errors *diag.Bag) {
	lx := lexer.New(file, content, locs, errors)
	p := New(file, lx.Tokens(), program, locs, errors)
	p.parseProgram()
}

type parseAbort struct{}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Kind != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) at(kind lexer.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) accept(kind lexer.Kind) (lexer.Token, bool) {
	if p.at(kind) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

func (p *Parser) loc(span source.Span) source.LocationID {
	return p.locs.Add(p.file, span)
}

func (p *Parser) fail(format string, args ...interface{}) {
	tok := p.peek()
	loc := p.loc(tok.Span)
	args = append(args, lexer.Describe(tok))
	p.errors.Add(diag.New(diag.PhaseParse, diag.ParseError, []source.LocationID{loc}, format+", found %s", args...))
	panic(parseAbort{})
}

func (p *Parser) expect(kind lexer.Kind, what string) lexer.Token {
	if tok, ok := p.accept(kind); ok {
		return tok
	}
	p.fail("expected %s", what)
	return lexer.Token{}
}

// recover skips to the next item separator at the current block level.
func (p *Parser) recover() {
	depth := 0
	for {
		switch p.peek().Kind {
		case lexer.EOF:
			return
		case lexer.LBrace, lexer.LParen, lexer.LBracket:
			depth++
		case lexer.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case lexer.RParen, lexer.RBracket:
			if depth > 0 {
				depth--
			}
		case lexer.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) parseProgram() {
	for !p.at(lexer.EOF) {
		if !p.at(lexer.KwModule) {
			// Either a file that does not start with a module header, or
			// leftovers after error recovery; skip to the next header.
			if !p.errors.HasErrors() {
				tok := p.peek()
				p.errors.Add(diag.New(diag.PhaseParse, diag.ParseError,
					[]source.LocationID{p.loc(tok.Span)},
					"expected a module header, found %s", lexer.Describe(tok)))
			}
			p.advance()
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					if _, ok := r.(parseAbort); !ok {
						panic(r)
					}
					p.recover()
				}
			}()
			p.parseModule()
		}()
	}
}

func isUpperName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func (p *Parser) moduleName() (string, source.Span) {
	if tok, ok := p.accept(lexer.Path); ok {
		return tok.Text, tok.Span
	}
	tok := p.peek()
	if tok.Kind == lexer.Ident && isUpperName(tok.Text) {
		p.advance()
		return tok.Text, tok.Span
	}
	p.fail("expected module name")
	return "", source.Span{}
}

func (p *Parser) parseModule() {
	start := p.expect(lexer.KwModule, "keyword module")
	name, _ := p.moduleName()
	module := &syntax.Module{
		Name:     name,
		Export:   syntax.EIList{Kind: syntax.EIImplicitAll},
		Location: p.loc(start.Span),
	}
	if p.at(lexer.LParen) {
		module.Export = p.parseEIList()
	}
	p.expect(lexer.KwWhere, "keyword where")
	p.expect(lexer.LBrace, "module body")
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		p.parseItem(module)
		if _, ok := p.accept(lexer.Semicolon); !ok {
			break
		}
	}
	p.expect(lexer.RBrace, "end of module body")
	p.program.AddModule(module)
}

// parseEIList parses an explicit export/import item list.
func (p *Parser) parseEIList() syntax.EIList {
	p.expect(lexer.LParen, "item list")
	list := syntax.EIList{Kind: syntax.EIExplicit}
	for !p.at(lexer.RParen) {
		tok := p.peek()
		name := p.itemName("exported or imported item")
		item := syntax.EIItemInfo{
			Item:     syntax.EIItem{Name: name},
			Location: p.loc(tok.Span),
		}
		if p.at(lexer.LParen) {
			p.advance()
			item.Item.Group = true
			for !p.at(lexer.RParen) {
				memberTok := p.peek()
				if _, ok := p.accept(lexer.Dot); ok {
					p.expect(lexer.Dot, "..")
					item.Item.Members = append(item.Item.Members, syntax.EIMemberInfo{
						All:      true,
						Location: p.loc(memberTok.Span),
					})
				} else {
					member := p.itemName("group member")
					item.Item.Members = append(item.Item.Members, syntax.EIMemberInfo{
						Name:     member,
						Location: p.loc(memberTok.Span),
					})
				}
				if _, ok := p.accept(lexer.Comma); !ok {
					break
				}
			}
			p.expect(lexer.RParen, "end of group")
		}
		list.Items = append(list.Items, item)
		if _, ok := p.accept(lexer.Comma); !ok {
			break
		}
	}
	p.expect(lexer.RParen, "end of item list")
	return list
}

func (p *Parser) itemName(what string) string {
	if tok, ok := p.accept(lexer.Ident); ok {
		return tok.Text
	}
	if tok, ok := p.accept(lexer.Path); ok {
		return tok.Text
	}
	p.fail("expected %s", what)
	return ""
}

func (p *Parser) parseItem(module *syntax.Module) {
	switch p.peek().Kind {
	case lexer.KwImport:
		p.parseImport(module)
	case lexer.KwData:
		p.parseData(module)
	case lexer.KwClass:
		module.Classes = append(module.Classes, p.parseClass())
	case lexer.KwInstance:
		module.Inst = append(module.Inst, p.parseInstance())
	case lexer.Ident:
		if p.peekAt(1).Kind == lexer.DoubleColon {
			module.FuncSigs = append(module.FuncSigs, p.parseFunctionSignature())
			return
		}
		module.Funcs = append(module.Funcs, p.parseFunction())
	default:
		p.fail("expected a top-level item")
	}
}

func (p *Parser) parseImport(module *syntax.Module) {
	start := p.expect(lexer.KwImport, "import")
	name, _ := p.moduleName()
	imp := syntax.Import{
		ModuleName: name,
		List:       syntax.EIList{Kind: syntax.EIImplicitAll},
		Location:   p.loc(start.Span),
	}
	if _, ok := p.accept(lexer.KwAs); ok {
		alias, _ := p.moduleName()
		imp.Alias = alias
	}
	if _, ok := p.accept(lexer.KwHiding); ok {
		imp.Hiding = true
		imp.List = p.parseEIList()
	} else if p.at(lexer.LParen) {
		imp.List = p.parseEIList()
	}
	module.Imports = append(module.Imports, imp)
}

func (p *Parser) parseDeriving() []syntax.DerivingInfo {
	if _, ok := p.accept(lexer.KwDeriving); !ok {
		return nil
	}
	var out []syntax.DerivingInfo
	parens := false
	if _, ok := p.accept(lexer.LParen); ok {
		parens = true
	}
	for {
		tok := p.expect(lexer.Ident, "class name")
		out = append(out, syntax.DerivingInfo{Name: tok.Text, Location: p.loc(tok.Span)})
		if _, ok := p.accept(lexer.Comma); !ok {
			break
		}
	}
	if parens {
		p.expect(lexer.RParen, "end of deriving list")
	}
	return out
}

func (p *Parser) parseData(module *syntax.Module) {
	start := p.expect(lexer.KwData, "data")
	nameTok := p.expect(lexer.Ident, "type name")
	var typeArgs []syntax.ArgInfo
	for p.at(lexer.Ident) && !isUpperName(p.peek().Text) {
		argTok := p.advance()
		typeArgs = append(typeArgs, syntax.ArgInfo{Name: argTok.Text, Location: p.loc(argTok.Span)})
	}
	p.expect(lexer.Equals, "=")
	loc := p.loc(start.Span)
	if _, ok := p.accept(lexer.KwExtern); ok {
		module.Records = append(module.Records, &syntax.RecordDecl{
			Name:     nameTok.Text,
			TypeArgs: typeArgs,
			External: true,
			Location: loc,
		})
		return
	}
	if p.at(lexer.LBrace) {
		record := &syntax.RecordDecl{Name: nameTok.Text, TypeArgs: typeArgs, Location: loc}
		p.advance()
		for !p.at(lexer.RBrace) {
			fieldTok := p.expect(lexer.Ident, "field name")
			p.expect(lexer.DoubleColon, "::")
			sig := p.parseTypeSignature()
			record.Fields = append(record.Fields, syntax.RecordFieldDecl{
				Name:      fieldTok.Text,
				Signature: sig,
				Location:  p.loc(fieldTok.Span),
			})
			if _, ok := p.accept(lexer.Comma); !ok {
				break
			}
		}
		p.expect(lexer.RBrace, "end of record fields")
		record.Deriving = p.parseDeriving()
		module.Records = append(module.Records, record)
		return
	}
	adt := &syntax.AdtDecl{Name: nameTok.Text, TypeArgs: typeArgs, Location: loc}
	for {
		variantTok := p.expect(lexer.Ident, "variant name")
		variant := syntax.VariantDecl{Name: variantTok.Text, Location: p.loc(variantTok.Span)}
		for p.atTypeAtomStart() {
			variant.Items = append(variant.Items, p.parseTypeAtom())
		}
		adt.Variants = append(adt.Variants, variant)
		if _, ok := p.accept(lexer.Pipe); !ok {
			break
		}
	}
	adt.Deriving = p.parseDeriving()
	module.Adts = append(module.Adts, adt)
}

// parseConstraints parses an optional `(C a, D b) =>` or `C a =>` prefix.
// It backtracks when no `=>`-like prefix is present.
func (p *Parser) parseConstraints() []syntax.ClassConstraint {
	start := p.pos
	var out []syntax.ClassConstraint
	parseOne := func() bool {
		tok := p.peek()
		if tok.Kind != lexer.Ident && tok.Kind != lexer.Path {
			return false
		}
		if !isUpperName(lastSegment(tok.Text)) {
			return false
		}
		p.advance()
		argTok, ok := p.accept(lexer.Ident)
		if !ok {
			return false
		}
		out = append(out, syntax.ClassConstraint{
			ClassPath: tok.Text,
			Arg:       argTok.Text,
			Location:  p.loc(tok.Span),
		})
		return true
	}
	if _, ok := p.accept(lexer.LParen); ok {
		for {
			if !parseOne() {
				p.pos = start
				return nil
			}
			if _, ok := p.accept(lexer.Comma); !ok {
				break
			}
		}
		if _, ok := p.accept(lexer.RParen); !ok {
			p.pos = start
			return nil
		}
	} else if !parseOne() {
		p.pos = start
		return nil
	}
	// The arrow of a constraint prefix is "=>"; it lexes as Equals
	// followed by OpGreater with no space between them.
	if p.at(lexer.Equals) && p.peekAt(1).Kind == lexer.OpGreater {
		p.advance()
		p.advance()
		return out
	}
	p.pos = start
	return nil
}

func (p *Parser) parseFunctionSignature() *syntax.FunctionSignatureDecl {
	nameTok := p.expect(lexer.Ident, "function name")
	p.expect(lexer.DoubleColon, "::")
	constraints := p.parseConstraints()
	sig := p.parseTypeSignature()
	return &syntax.FunctionSignatureDecl{
		Name:        nameTok.Text,
		Signature:   sig,
		Constraints: constraints,
		Location:    p.loc(nameTok.Span),
	}
}

func (p *Parser) parseFunction() *syntax.FunctionDecl {
	nameTok := p.expect(lexer.Ident, "function name")
	fn := &syntax.FunctionDecl{Name: nameTok.Text, Location: p.loc(nameTok.Span)}
	for p.at(lexer.Ident) && !isUpperName(p.peek().Text) {
		argTok := p.advance()
		fn.Args = append(fn.Args, syntax.ArgInfo{Name: argTok.Text, Location: p.loc(argTok.Span)})
	}
	p.expect(lexer.Equals, "=")
	if _, ok := p.accept(lexer.KwExtern); ok {
		fn.Extern = true
		fn.Body = syntax.NoExpr
		return fn
	}
	fn.Body = p.parseExpr()
	return fn
}

func (p *Parser) parseClass() *syntax.ClassDecl {
	start := p.expect(lexer.KwClass, "class")
	constraints := p.parseConstraints()
	nameTok := p.expect(lexer.Ident, "class name")
	argTok := p.expect(lexer.Ident, "class argument")
	decl := &syntax.ClassDecl{
		Name:        nameTok.Text,
		Arg:         argTok.Text,
		Constraints: constraints,
		Location:    p.loc(start.Span),
	}
	p.expect(lexer.KwWhere, "where")
	p.expect(lexer.LBrace, "class body")
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		if p.at(lexer.Ident) && p.peekAt(1).Kind == lexer.DoubleColon {
			decl.MemberSigs = append(decl.MemberSigs, p.parseFunctionSignature())
		} else {
			decl.Defaults = append(decl.Defaults, p.parseFunction())
		}
		if _, ok := p.accept(lexer.Semicolon); !ok {
			break
		}
	}
	p.expect(lexer.RBrace, "end of class body")
	return decl
}

func (p *Parser) parseInstance() *syntax.InstanceDecl {
	start := p.expect(lexer.KwInstance, "instance")
	constraints := p.parseConstraints()
	classPath := p.itemName("class name")
	sig := p.parseTypeAtom()
	decl := &syntax.InstanceDecl{
		ClassPath:   classPath,
		Signature:   sig,
		Constraints: constraints,
		Location:    p.loc(start.Span),
	}
	p.expect(lexer.KwWhere, "where")
	p.expect(lexer.LBrace, "instance body")
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		if p.at(lexer.Ident) && p.peekAt(1).Kind == lexer.DoubleColon {
			decl.MemberSigs = append(decl.MemberSigs, p.parseFunctionSignature())
		} else {
			decl.Members = append(decl.Members, p.parseFunction())
		}
		if _, ok := p.accept(lexer.Semicolon); !ok {
			break
		}
	}
	p.expect(lexer.RBrace, "end of instance body")
	return decl
}
