package parser

import (
	"github.com/sunholo/skiff/internal/lexer"
	"github.com/sunholo/skiff/internal/syntax"
)

// parsePattern parses a pattern, including constructor application and an
// optional `:: type` annotation. Guards are attached by the caller.
func (p *Parser) parsePattern() syntax.PatternID {
	pattern := p.parsePatternApp()
	if tok, ok := p.accept(lexer.DoubleColon); ok {
		sig := p.parseTypeSignature()
		pattern = p.program.AddPattern(&syntax.PTyped{Sub: pattern, Signature: sig}, p.loc(tok.Span))
	}
	return pattern
}

func (p *Parser) parsePatternApp() syntax.PatternID {
	tok := p.peek()
	if (tok.Kind == lexer.Ident && isUpperName(tok.Text)) || tok.Kind == lexer.Path {
		p.advance()
		var items []syntax.PatternID
		for p.atPatternAtomStart() {
			items = append(items, p.parsePatternAtom())
		}
		return p.program.AddPattern(&syntax.PConstructor{Path: tok.Text, Items: items}, p.loc(tok.Span))
	}
	return p.parsePatternAtom()
}

func (p *Parser) atPatternAtomStart() bool {
	switch p.peek().Kind {
	case lexer.Ident, lexer.Path, lexer.IntLit, lexer.CharLit, lexer.StringLit,
		lexer.Underscore, lexer.LParen:
		return true
	}
	return false
}

func (p *Parser) parsePatternAtom() syntax.PatternID {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Underscore:
		p.advance()
		return p.program.AddPattern(&syntax.PWildcard{}, p.loc(tok.Span))
	case lexer.IntLit:
		p.advance()
		return p.program.AddPattern(&syntax.PIntLit{Value: tok.Int}, p.loc(tok.Span))
	case lexer.CharLit:
		p.advance()
		return p.program.AddPattern(&syntax.PCharLit{Value: tok.Char}, p.loc(tok.Span))
	case lexer.StringLit:
		p.advance()
		return p.program.AddPattern(&syntax.PStringLit{Value: tok.Text}, p.loc(tok.Span))
	case lexer.Ident:
		p.advance()
		if isUpperName(tok.Text) {
			return p.program.AddPattern(&syntax.PConstructor{Path: tok.Text}, p.loc(tok.Span))
		}
		return p.program.AddPattern(&syntax.PBinding{Name: tok.Text}, p.loc(tok.Span))
	case lexer.Path:
		p.advance()
		return p.program.AddPattern(&syntax.PConstructor{Path: tok.Text}, p.loc(tok.Span))
	case lexer.LParen:
		p.advance()
		if _, ok := p.accept(lexer.RParen); ok {
			return p.program.AddPattern(&syntax.PTuple{}, p.loc(tok.Span))
		}
		first := p.parsePattern()
		if p.at(lexer.Comma) {
			items := []syntax.PatternID{first}
			for {
				if _, ok := p.accept(lexer.Comma); !ok {
					break
				}
				items = append(items, p.parsePattern())
			}
			p.expect(lexer.RParen, "end of tuple pattern")
			return p.program.AddPattern(&syntax.PTuple{Items: items}, p.loc(tok.Span))
		}
		p.expect(lexer.RParen, "closing parenthesis")
		return first
	}
	p.fail("expected a pattern")
	return 0
}
