package parser

import (
	"github.com/sunholo/skiff/internal/lexer"
	"github.com/sunholo/skiff/internal/syntax"
)

func (p *Parser) atTypeAtomStart() bool {
	switch p.peek().Kind {
	case lexer.Ident, lexer.Path, lexer.LParen, lexer.Underscore:
		return true
	}
	return false
}

// parseTypeSignature parses a full type with right-associative arrows.
func (p *Parser) parseTypeSignature() syntax.TypeSignatureID {
	from := p.parseTypeApp()
	if tok, ok := p.accept(lexer.Arrow); ok {
		to := p.parseTypeSignature()
		return p.program.AddTypeSignature(&syntax.TSFunction{From: from, To: to}, p.loc(tok.Span))
	}
	return from
}

// parseTypeApp parses a named type applied to atom arguments, or a plain
// atom.
func (p *Parser) parseTypeApp() syntax.TypeSignatureID {
	tok := p.peek()
	if tok.Kind == lexer.Ident || tok.Kind == lexer.Path {
		p.advance()
		var args []syntax.TypeSignatureID
		for p.atTypeAtomStart() {
			args = append(args, p.parseTypeAtom())
		}
		return p.program.AddTypeSignature(&syntax.TSNamed{Path: tok.Text, Args: args}, p.loc(tok.Span))
	}
	return p.parseTypeAtom()
}

// parseTypeAtom parses a type without application: a bare name, a
// parenthesised or tuple type, or a wildcard.
func (p *Parser) parseTypeAtom() syntax.TypeSignatureID {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Ident, lexer.Path:
		p.advance()
		return p.program.AddTypeSignature(&syntax.TSNamed{Path: tok.Text}, p.loc(tok.Span))
	case lexer.Underscore:
		p.advance()
		return p.program.AddTypeSignature(&syntax.TSWildcard{}, p.loc(tok.Span))
	case lexer.LParen:
		p.advance()
		if _, ok := p.accept(lexer.RParen); ok {
			return p.program.AddTypeSignature(&syntax.TSTuple{}, p.loc(tok.Span))
		}
		first := p.parseTypeSignature()
		if p.at(lexer.Comma) {
			items := []syntax.TypeSignatureID{first}
			for {
				if _, ok := p.accept(lexer.Comma); !ok {
					break
				}
				items = append(items, p.parseTypeSignature())
			}
			p.expect(lexer.RParen, "end of tuple type")
			return p.program.AddTypeSignature(&syntax.TSTuple{Items: items}, p.loc(tok.Span))
		}
		p.expect(lexer.RParen, "closing parenthesis")
		return first
	}
	p.fail("expected a type")
	return syntax.NoTypeSignature
}
