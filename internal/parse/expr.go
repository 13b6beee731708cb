package parse

import (
	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/token"
)

// precedence ranks binary operators from loosest to tightest; higher binds
// tighter. Assignment is handled separately at the statement level, not
// here, since its left side must be an lvalue.
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

// ParseExpression parses a full expression at the lowest precedence.
func (p *Parser) ParseExpression() ast.Node {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) ast.Node {
	left := p.parseUnary()
	for {
		op := p.cur().Text
		prec, ok := precedence[op]
		if !ok || p.cur().Kind != token.KindOperator || prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.Binary{Span: opTok.Span, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Node {
	switch p.cur().Text {
	case "!", "-", "++", "--":
		if p.cur().Kind == token.KindOperator {
			opTok := p.advance()
			operand := p.parseUnary()
			return &ast.Unary{Span: opTok.Span, Op: opTok.Text, Operand: operand}
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Node {
	expr := p.parsePrimary()
	for {
		switch {
		case p.cur().IsSymbol("."):
			dot := p.advance()
			if p.cur().IsSymbol("*") {
				p.advance()
				if id, ok := expr.(*ast.Identifier); ok {
					expr = &ast.Wildcard{Span: dot.Span, Table: id.Name}
					continue
				}
				p.errorf("%q.* requires a bare table name on the left", dot.Text)
				return expr
			}
			name, ok := p.expectIdentifier()
			if !ok {
				return expr
			}
			expr = &ast.Member{Span: dot.Span, Target: expr, Name: name}
		case p.cur().IsSymbol("("):
			paren := p.advance()
			args := p.parseArgs()
			expr = &ast.Call{Span: paren.Span, Callee: expr, Args: args}
		case p.cur().IsSymbol("["):
			br := p.advance()
			idx := p.ParseExpression()
			p.expectSymbol("]")
			expr = &ast.Index{Span: br.Span, Target: expr, Index: idx}
		case p.cur().Text == "++" || p.cur().Text == "--":
			if p.cur().Kind == token.KindOperator {
				opTok := p.advance()
				expr = &ast.Unary{Span: opTok.Span, Op: opTok.Text, Operand: expr, Postfix: true}
				continue
			}
			return expr
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []ast.Node {
	var args []ast.Node
	if p.cur().IsSymbol(")") {
		p.advance()
		return args
	}
	for {
		args = append(args, p.ParseExpression())
		if p.cur().IsSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectSymbol(")")
	return args
}

func (p *Parser) parsePrimary() ast.Node {
	t := p.cur()
	switch {
	case t.Kind == token.KindUInt:
		p.advance()
		return &ast.UIntLiteral{Span: t.Span, Value: t.UInt}
	case t.Kind == token.KindFloat:
		p.advance()
		return &ast.FloatLiteral{Span: t.Span, Value: t.Float}
	case t.Kind == token.KindString:
		p.advance()
		return &ast.StringLiteral{Span: t.Span, Value: t.String}
	case t.IsKeyword("true"):
		p.advance()
		return &ast.BoolLiteral{Span: t.Span, Value: true}
	case t.IsKeyword("false"):
		p.advance()
		return &ast.BoolLiteral{Span: t.Span, Value: false}
	case t.IsKeyword("null"):
		p.advance()
		return &ast.NullLiteral{Span: t.Span}
	case t.Kind == token.KindIdentifier:
		p.advance()
		return &ast.Identifier{Span: t.Span, Name: t.Text}
	case t.IsSymbol("*"):
		p.advance()
		return &ast.Wildcard{Span: t.Span}
	case t.IsSymbol("("):
		p.advance()
		inner := p.ParseExpression()
		p.expectSymbol(")")
		return inner
	case t.IsSymbol("["):
		p.advance()
		var elems []ast.Node
		if !p.cur().IsSymbol("]") {
			for {
				elems = append(elems, p.ParseExpression())
				if p.cur().IsSymbol(",") {
					p.advance()
					continue
				}
				break
			}
		}
		p.expectSymbol("]")
		return &ast.ArrayLiteral{Span: t.Span, Elements: elems}
	default:
		p.errorf("expected expression, got %q", t.Text)
		p.synchronize()
		return &ast.NullLiteral{Span: t.Span}
	}
}
