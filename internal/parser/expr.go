package parser

import (
	"github.com/sunholo/skiff/internal/lexer"
	"github.com/sunholo/skiff/internal/syntax"
)

// parseExpr parses a full expression. Precedence, loosest first:
// |>, ||, &&, comparisons, additive, multiplicative, unary, application.
func (p *Parser) parseExpr() syntax.ExprID {
	return p.parsePipe()
}

func (p *Parser) opCall(op syntax.Op, tok lexer.Token, args ...syntax.ExprID) syntax.ExprID {
	loc := p.loc(tok.Span)
	callee := p.program.AddExpr(&syntax.BuiltinOp{Op: op}, loc)
	return p.program.AddExpr(&syntax.FunctionCall{Callee: callee, Args: args}, loc)
}

func (p *Parser) parsePipe() syntax.ExprID {
	left := p.parseOr()
	for {
		tok, ok := p.accept(lexer.OpPipeForward)
		if !ok {
			return left
		}
		right := p.parseOr()
		left = p.opCall(syntax.OpPipe, tok, left, right)
	}
}

func (p *Parser) parseOr() syntax.ExprID {
	left := p.parseAnd()
	for {
		tok, ok := p.accept(lexer.OpOrOr)
		if !ok {
			return left
		}
		right := p.parseAnd()
		left = p.opCall(syntax.OpOr, tok, left, right)
	}
}

func (p *Parser) parseAnd() syntax.ExprID {
	left := p.parseCompare()
	for {
		tok, ok := p.accept(lexer.OpAndAnd)
		if !ok {
			return left
		}
		right := p.parseCompare()
		left = p.opCall(syntax.OpAnd, tok, left, right)
	}
}

var compareOps = map[lexer.Kind]syntax.Op{
	lexer.OpEqEq:      syntax.OpEq,
	lexer.OpNotEq:     syntax.OpNotEq,
	lexer.OpLess:      syntax.OpLessThan,
	lexer.OpLessEq:    syntax.OpLessEqual,
	lexer.OpGreater:   syntax.OpGreaterThan,
	lexer.OpGreaterEq: syntax.OpGreaterEqual,
}

func (p *Parser) parseCompare() syntax.ExprID {
	left := p.parseAdditive()
	for {
		op, ok := compareOps[p.peek().Kind]
		if !ok {
			return left
		}
		tok := p.advance()
		right := p.parseAdditive()
		left = p.opCall(op, tok, left, right)
	}
}

func (p *Parser) parseAdditive() syntax.ExprID {
	left := p.parseMultiplicative()
	for {
		var op syntax.Op
		switch p.peek().Kind {
		case lexer.OpPlus:
			op = syntax.OpAdd
		case lexer.OpMinus:
			op = syntax.OpSub
		default:
			return left
		}
		tok := p.advance()
		right := p.parseMultiplicative()
		left = p.opCall(op, tok, left, right)
	}
}

func (p *Parser) parseMultiplicative() syntax.ExprID {
	left := p.parseUnary()
	for {
		var op syntax.Op
		switch p.peek().Kind {
		case lexer.OpStar:
			op = syntax.OpMul
		case lexer.OpSlash:
			op = syntax.OpDiv
		default:
			return left
		}
		tok := p.advance()
		right := p.parseUnary()
		left = p.opCall(op, tok, left, right)
	}
}

func (p *Parser) parseUnary() syntax.ExprID {
	if tok, ok := p.accept(lexer.OpBang); ok {
		operand := p.parseUnary()
		return p.opCall(syntax.OpNot, tok, operand)
	}
	return p.parseApplication()
}

func (p *Parser) atExprAtomStart() bool {
	switch p.peek().Kind {
	case lexer.Ident, lexer.Path, lexer.IntLit, lexer.FloatLit, lexer.StringLit,
		lexer.CharLit, lexer.KwTrue, lexer.KwFalse, lexer.LParen, lexer.LBracket,
		lexer.Backslash, lexer.KwIf, lexer.KwCase, lexer.KwDo:
		return true
	case lexer.LBrace:
		// A layout-inserted brace opens a block, never a record literal.
		return !p.peek().Implicit
	}
	return false
}

// parseApplication parses juxtaposed postfix expressions; more than one
// becomes a call.
func (p *Parser) parseApplication() syntax.ExprID {
	startTok := p.peek()
	first := p.parsePostfix()
	var args []syntax.ExprID
	for p.atExprAtomStart() {
		args = append(args, p.parsePostfix())
	}
	if len(args) == 0 {
		return first
	}
	return p.program.AddExpr(&syntax.FunctionCall{Callee: first, Args: args}, p.loc(startTok.Span))
}

// parsePostfix handles field access, tuple field access and record
// updates.
func (p *Parser) parsePostfix() syntax.ExprID {
	expr := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case lexer.Dot:
			dotTok := p.advance()
			switch {
			case p.at(lexer.Ident):
				nameTok := p.advance()
				expr = p.program.AddExpr(&syntax.FieldAccess{Name: nameTok.Text, Receiver: expr}, p.loc(dotTok.Span))
			case p.at(lexer.IntLit):
				indexTok := p.advance()
				expr = p.program.AddExpr(&syntax.TupleFieldAccess{Index: int(indexTok.Int), Receiver: expr}, p.loc(dotTok.Span))
			default:
				p.fail("expected field name or tuple index after '.'")
			}
		case lexer.LBrace:
			if p.peek().Implicit {
				return expr
			}
			braceTok := p.advance()
			fields := p.parseFieldInits()
			p.expect(lexer.RBrace, "end of record update")
			expr = p.program.AddExpr(&syntax.RecordUpdate{Receiver: expr, Fields: fields}, p.loc(braceTok.Span))
		default:
			return expr
		}
	}
}

func (p *Parser) parseFieldInits() []syntax.FieldInit {
	var fields []syntax.FieldInit
	for !p.at(lexer.RBrace) {
		nameTok := p.expect(lexer.Ident, "field name")
		p.expect(lexer.Equals, "=")
		body := p.parseExpr()
		fields = append(fields, syntax.FieldInit{
			Name:     nameTok.Text,
			Body:     body,
			Location: p.loc(nameTok.Span),
		})
		if _, ok := p.accept(lexer.Comma); !ok {
			break
		}
	}
	return fields
}

func (p *Parser) parsePrimary() syntax.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case lexer.IntLit:
		p.advance()
		return p.program.AddExpr(&syntax.IntLit{Value: tok.Int}, p.loc(tok.Span))
	case lexer.FloatLit:
		p.advance()
		return p.program.AddExpr(&syntax.FloatLit{Value: tok.Float}, p.loc(tok.Span))
	case lexer.CharLit:
		p.advance()
		return p.program.AddExpr(&syntax.CharLit{Value: tok.Char}, p.loc(tok.Span))
	case lexer.StringLit:
		p.advance()
		if p.at(lexer.OpPercent) {
			return p.parseFormatter(tok)
		}
		return p.program.AddExpr(&syntax.StringLit{Value: tok.Text}, p.loc(tok.Span))
	case lexer.KwTrue:
		p.advance()
		return p.program.AddExpr(&syntax.BoolLit{Value: true}, p.loc(tok.Span))
	case lexer.KwFalse:
		p.advance()
		return p.program.AddExpr(&syntax.BoolLit{Value: false}, p.loc(tok.Span))
	case lexer.Ident, lexer.Path:
		p.advance()
		return p.program.AddExpr(&syntax.Path{Name: tok.Text}, p.loc(tok.Span))
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwCase:
		return p.parseCase()
	case lexer.KwDo:
		return p.parseDo()
	case lexer.Backslash:
		return p.parseLambda()
	case lexer.LParen:
		return p.parseParen()
	case lexer.LBracket:
		return p.parseList()
	case lexer.LBrace:
		p.advance()
		fields := p.parseFieldInits()
		p.expect(lexer.RBrace, "end of record literal")
		return p.program.AddExpr(&syntax.RecordInit{Fields: fields}, p.loc(tok.Span))
	}
	p.fail("expected an expression")
	return syntax.NoExpr
}

// parseFormatter parses `"..." % args`, where args is a parenthesised
// tuple (each item one argument) or a single postfix expression.
func (p *Parser) parseFormatter(strTok lexer.Token) syntax.ExprID {
	p.expect(lexer.OpPercent, "%")
	var args []syntax.ExprID
	if p.at(lexer.LParen) {
		p.advance()
		if _, ok := p.accept(lexer.RParen); !ok {
			for {
				args = append(args, p.parseExpr())
				if _, ok := p.accept(lexer.Comma); !ok {
					break
				}
			}
			p.expect(lexer.RParen, "end of format arguments")
		}
	} else {
		args = append(args, p.parsePostfix())
	}
	return p.program.AddExpr(&syntax.Formatter{Fmt: strTok.Text, Args: args}, p.loc(strTok.Span))
}

func (p *Parser) parseIf() syntax.ExprID {
	tok := p.expect(lexer.KwIf, "if")
	cond := p.parseExpr()
	p.expect(lexer.KwThen, "then")
	thenBranch := p.parseExpr()
	p.expect(lexer.KwElse, "else")
	elseBranch := p.parseExpr()
	return p.program.AddExpr(&syntax.If{Cond: cond, Then: thenBranch, Else: elseBranch}, p.loc(tok.Span))
}

func (p *Parser) parseCase() syntax.ExprID {
	tok := p.expect(lexer.KwCase, "case")
	body := p.parseExpr()
	p.expect(lexer.KwOf, "of")
	p.expect(lexer.LBrace, "case arms")
	var cases []syntax.Case
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		pattern := p.parsePattern()
		if guardTok, ok := p.accept(lexer.Pipe); ok {
			guard := p.parseExpr()
			pattern = p.program.AddPattern(&syntax.PGuarded{Sub: pattern, Guard: guard}, p.loc(guardTok.Span))
		}
		p.expect(lexer.Arrow, "->")
		armBody := p.parseExpr()
		cases = append(cases, syntax.Case{Pattern: pattern, Body: armBody})
		if _, ok := p.accept(lexer.Semicolon); !ok {
			break
		}
	}
	p.expect(lexer.RBrace, "end of case arms")
	return p.program.AddExpr(&syntax.CaseOf{Body: body, Cases: cases}, p.loc(tok.Span))
}

// parseDo parses a statement block. An item containing a top-level `<-`
// is a bind; anything else is an expression.
func (p *Parser) parseDo() syntax.ExprID {
	tok := p.expect(lexer.KwDo, "do")
	p.expect(lexer.LBrace, "do block")
	var items []syntax.ExprID
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		items = append(items, p.parseDoItem())
		if _, ok := p.accept(lexer.Semicolon); !ok {
			break
		}
	}
	p.expect(lexer.RBrace, "end of do block")
	return p.program.AddExpr(&syntax.Do{Items: items}, p.loc(tok.Span))
}

func (p *Parser) parseDoItem() syntax.ExprID {
	if p.bindAhead() {
		pattern := p.parsePattern()
		tok := p.expect(lexer.BindArrow, "<-")
		rhs := p.parseExpr()
		return p.program.AddExpr(&syntax.Bind{Pattern: pattern, Rhs: rhs}, p.loc(tok.Span))
	}
	return p.parseExpr()
}

// bindAhead scans for a `<-` before the end of the current do item.
func (p *Parser) bindAhead() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case lexer.BindArrow:
			if depth == 0 {
				return true
			}
		case lexer.LParen, lexer.LBracket, lexer.LBrace:
			depth++
		case lexer.RParen, lexer.RBracket:
			depth--
		case lexer.RBrace:
			if depth == 0 {
				return false
			}
			depth--
		case lexer.Semicolon:
			if depth == 0 {
				return false
			}
		case lexer.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseLambda() syntax.ExprID {
	tok := p.expect(lexer.Backslash, "lambda")
	var args []syntax.ArgInfo
	for p.at(lexer.Ident) {
		argTok := p.advance()
		args = append(args, syntax.ArgInfo{Name: argTok.Text, Location: p.loc(argTok.Span)})
	}
	if len(args) == 0 {
		p.fail("expected lambda arguments")
	}
	p.expect(lexer.Arrow, "->")
	body := p.parseExpr()
	return p.program.AddExpr(&syntax.Lambda{Args: args, Body: body}, p.loc(tok.Span))
}

func (p *Parser) parseParen() syntax.ExprID {
	tok := p.expect(lexer.LParen, "(")
	if _, ok := p.accept(lexer.RParen); ok {
		return p.program.AddExpr(&syntax.Tuple{}, p.loc(tok.Span))
	}
	first := p.parseExpr()
	if p.at(lexer.Comma) {
		items := []syntax.ExprID{first}
		for {
			if _, ok := p.accept(lexer.Comma); !ok {
				break
			}
			items = append(items, p.parseExpr())
		}
		p.expect(lexer.RParen, "end of tuple")
		return p.program.AddExpr(&syntax.Tuple{Items: items}, p.loc(tok.Span))
	}
	p.expect(lexer.RParen, "closing parenthesis")
	return first
}

func (p *Parser) parseList() syntax.ExprID {
	tok := p.expect(lexer.LBracket, "[")
	var items []syntax.ExprID
	for !p.at(lexer.RBracket) {
		items = append(items, p.parseExpr())
		if _, ok := p.accept(lexer.Comma); !ok {
			break
		}
	}
	p.expect(lexer.RBracket, "end of list")
	return p.program.AddExpr(&syntax.List{Items: items}, p.loc(tok.Span))
}
