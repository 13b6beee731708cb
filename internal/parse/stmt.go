package parse

import (
	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/token"
)

var compoundAssignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

func (p *Parser) parseStatement() ast.Node {
	t := p.cur()
	switch {
	case t.IsSymbol("{"):
		return p.parseBlock()
	case t.IsKeyword("let"):
		return p.parseLet()
	case t.IsKeyword("if"):
		return p.parseIf()
	case t.IsKeyword("while"):
		return p.parseWhile()
	case t.IsKeyword("for"):
		return p.parseFor()
	case t.IsKeyword("loop"):
		return p.parseLoop()
	case t.IsKeyword("break"):
		p.advance()
		return &ast.Break{Span: t.Span}
	case t.IsKeyword("continue"):
		p.advance()
		return &ast.Continue{Span: t.Span}
	case t.IsKeyword("return"):
		return p.parseReturn()
	case t.IsKeyword("fn"):
		return p.parseFuncDecl()
	default:
		return p.parseExprOrAssignStatement()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.cur().Span
	p.expectSymbol("{")
	var stmts []ast.Node
	for !p.cur().IsSymbol("}") && !p.atEOF() {
		n := p.parseStatement()
		if n != nil {
			stmts = append(stmts, n)
		}
		p.consumeStatementTerminator()
	}
	p.expectSymbol("}")
	return &ast.Block{Span: start, Statements: stmts}
}

func (p *Parser) parseLet() ast.Node {
	start := p.advance().Span // 'let'
	name, ok := p.expectIdentifier()
	if !ok {
		p.synchronize()
		return nil
	}
	if !p.expectSymbol("=") {
		p.synchronize()
		return nil
	}
	value := p.ParseExpression()
	return &ast.Let{Span: start, Name: name, Value: value}
}

// parseExprOrAssignStatement handles both `name = expr` (and compound
// assignment forms) and bare expression statements, disambiguated by
// whether an assignment operator follows the parsed left-hand expression.
func (p *Parser) parseExprOrAssignStatement() ast.Node {
	start := p.cur().Span
	left := p.ParseExpression()
	if p.cur().Kind == token.KindOperator && compoundAssignOps[p.cur().Text] {
		opTok := p.advance()
		value := p.ParseExpression()
		return &ast.Assign{Span: start, Target: left, Op: opTok.Text, Value: value}
	}
	return &ast.ExprStmt{Span: start, Expr: left}
}

func (p *Parser) parseIf() ast.Node {
	start := p.advance().Span // 'if'
	cond := p.ParseExpression()
	then := p.parseBlock()
	var elseNode ast.Node
	if p.cur().IsKeyword("else") {
		p.advance()
		if p.cur().IsKeyword("if") {
			elseNode = p.parseIf()
		} else {
			elseNode = p.parseBlock()
		}
	}
	return &ast.If{Span: start, Cond: cond, Then: then, Else: elseNode}
}

func (p *Parser) parseWhile() ast.Node {
	start := p.advance().Span // 'while'
	cond := p.ParseExpression()
	body := p.parseBlock()
	return &ast.While{Span: start, Cond: cond, Body: body}
}

// parseFor recognizes an initializer that is one of let, assignment, or a
// bare literal/expression (§4.4), each terminated by ';', followed by the
// condition and ';' and the post-action, then the body block.
func (p *Parser) parseFor() ast.Node {
	start := p.advance().Span // 'for'
	var init ast.Node
	switch {
	case p.cur().IsKeyword("let"):
		init = p.parseLet()
	default:
		init = p.parseExprOrAssignStatement()
	}
	p.expectSymbol(";")
	cond := p.ParseExpression()
	p.expectSymbol(";")
	post := p.parseExprOrAssignStatement()
	body := p.parseBlock()
	return &ast.For{Span: start, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseLoop() ast.Node {
	start := p.advance().Span // 'loop'
	body := p.parseBlock()
	return &ast.Loop{Span: start, Body: body}
}

func (p *Parser) parseReturn() ast.Node {
	start := p.advance().Span // 'return'
	if p.cur().IsSymbol(";") || p.cur().IsSymbol("}") {
		return &ast.Return{Span: start}
	}
	value := p.ParseExpression()
	return &ast.Return{Span: start, Value: value}
}

func (p *Parser) parseFuncDecl() ast.Node {
	start := p.advance().Span // 'fn'
	name, ok := p.expectIdentifier()
	if !ok {
		p.synchronize()
		return nil
	}
	p.expectSymbol("(")
	var params []ast.Param
	if !p.cur().IsSymbol(")") {
		for {
			pname, ok := p.expectIdentifier()
			if !ok {
				break
			}
			p.expectSymbol(":")
			ptype := p.parseTypeRef()
			params = append(params, ast.Param{Name: pname, Type: ptype})
			if p.cur().IsSymbol(",") {
				p.advance()
				continue
			}
			break
		}
	}
	p.expectSymbol(")")

	var ret ast.TypeRef
	if p.cur().IsSymbol("->") {
		p.advance()
		ret = p.parseTypeRef()
	}
	body := p.parseBlock()
	return &ast.FuncDecl{Span: start, Name: name, Params: params, ReturnType: ret, Body: body}
}

// parseTypeRef parses a function-signature type: int, uint, float, string,
// bool, *T, or [T] (§4.4).
func (p *Parser) parseTypeRef() ast.TypeRef {
	if p.cur().IsSymbol("*") {
		p.advance()
		inner := p.parseTypeRef()
		return ast.TypeRef{Name: "*", Pointer: true, Element: &inner}
	}
	if p.cur().IsSymbol("[") {
		p.advance()
		inner := p.parseTypeRef()
		p.expectSymbol("]")
		return ast.TypeRef{Name: "[]", Element: &inner}
	}
	name, ok := p.expectIdentifier()
	if !ok {
		return ast.TypeRef{Name: "any"}
	}
	return ast.TypeRef{Name: name}
}
