package parse

import (
	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/token"
)

// parseQuery parses `query <table> select|insert|update|delete ...`.
func (p *Parser) parseQuery() ast.Node {
	start := p.advance().Span // 'query'
	table, ok := p.expectIdentifier()
	if !ok {
		p.synchronize()
		return nil
	}

	switch {
	case p.cur().IsQueryKeyword("select"):
		p.advance()
		return p.parseSelect(start, table)
	case p.cur().IsQueryKeyword("insert"):
		p.advance()
		return p.parseInsert(start, table)
	case p.cur().IsQueryKeyword("update"):
		p.advance()
		return p.parseUpdate(start, table)
	case p.cur().IsQueryKeyword("delete"):
		p.advance()
		return p.parseDelete(start, table)
	default:
		p.errorf("expected select, insert, update, or delete, got %q", p.cur().Text)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseSelect(start ast.Span, table string) ast.Node {
	q := &ast.Select{Span: start, Table: table}

	q.Columns = append(q.Columns, p.parseSelector())
	for p.cur().IsSymbol(",") {
		p.advance()
		q.Columns = append(q.Columns, p.parseSelector())
	}

	if p.cur().IsQueryKeyword("exclude") {
		p.advance()
		for {
			name, ok := p.expectIdentifier()
			if !ok {
				break
			}
			q.Exclude = append(q.Exclude, name)
			if p.cur().IsSymbol(",") {
				p.advance()
				continue
			}
			break
		}
	}

	for {
		kind, ok := p.joinKindAhead()
		if !ok {
			break
		}
		if p.cur().Kind == token.KindIdentifier {
			p.advance() // left/right/full/inner qualifier
		}
		q.Joins = append(q.Joins, p.parseJoin(kind))
	}

	p.parseQueryTail(&q.Where, &q.Order, &q.Limit, &q.Offset)
	return q
}

// parseSelector parses one SELECT column item: a bare `*`, `table.*`,
// `table.column`, a bare identifier, or an arbitrary computed expression.
func (p *Parser) parseSelector() ast.Node {
	return p.ParseExpression()
}

// joinKindAhead reports whether the upcoming tokens start a join clause
// (`join`, or a qualifier identifier directly followed by `join`: `left
// join`, `right join`, `full join`, `inner join`) and which JoinKind it
// denotes.
func (p *Parser) joinKindAhead() (ast.JoinKind, bool) {
	if p.cur().IsQueryKeyword("join") {
		return ast.JoinInner, true
	}
	if p.cur().Kind == token.KindIdentifier && p.peekAt(1).IsQueryKeyword("join") {
		switch p.cur().Text {
		case "left":
			return ast.JoinLeft, true
		case "right":
			return ast.JoinRight, true
		case "full":
			return ast.JoinFull, true
		case "inner":
			return ast.JoinInner, true
		}
	}
	return ast.JoinInner, false
}

// parseJoin parses `join <table> on <expr>`. The join-kind keyword, when
// present, precedes `join` (e.g. `left join`); callers that have already
// consumed it pass it in as kind.
func (p *Parser) parseJoin(kind ast.JoinKind) ast.Join {
	p.advance() // 'join'
	table, _ := p.expectIdentifier()
	if p.cur().IsQueryKeyword("on") {
		p.advance()
	} else {
		p.errorf("expected 'on' after join table name, got %q", p.cur().Text)
	}
	on := p.ParseExpression()
	return ast.Join{Kind: kind, Table: table, On: on}
}

func (p *Parser) parseInsert(start ast.Span, table string) ast.Node {
	q := &ast.Insert{Span: start, Table: table}
	q.Values = p.parseAssignmentList()
	return q
}

func (p *Parser) parseUpdate(start ast.Span, table string) ast.Node {
	q := &ast.Update{Span: start, Table: table}
	q.Values = p.parseAssignmentList()
	if p.cur().IsQueryKeyword("where") {
		p.advance()
		q.Where = p.ParseExpression()
	} else {
		p.errorf("UPDATE requires a WHERE clause")
	}
	return q
}

func (p *Parser) parseDelete(start ast.Span, table string) ast.Node {
	q := &ast.Delete{Span: start, Table: table}
	if p.cur().IsQueryKeyword("where") {
		p.advance()
		q.Where = p.ParseExpression()
	} else {
		p.errorf("DELETE requires a WHERE clause")
	}
	return q
}

// parseAssignmentList parses a `column:value` list as used by INSERT and
// UPDATE, separated by whitespace (no comma required by the illustrative
// grammar) and terminated by a keyword/symbol that starts the next clause.
func (p *Parser) parseAssignmentList() []ast.Assignment {
	var out []ast.Assignment
	for p.cur().Kind == token.KindIdentifier && p.peekAt(1).IsSymbol(":") {
		name, ok := p.expectIdentifier()
		if !ok {
			break
		}
		if !p.expectSymbol(":") {
			break
		}
		value := p.ParseExpression()
		out = append(out, ast.Assignment{Column: name, Value: value})
		if p.cur().IsSymbol(",") {
			p.advance()
		}
	}
	return out
}

func (p *Parser) parseQueryTail(where *ast.Node, order **ast.Order, limit, offset *ast.Node) {
	if p.cur().IsQueryKeyword("where") {
		p.advance()
		*where = p.ParseExpression()
	}
	if p.cur().IsQueryKeyword("order") {
		p.advance()
		*order = p.parseOrder()
	}
	if p.cur().IsQueryKeyword("limit") {
		p.advance()
		*limit = p.ParseExpression()
	}
	if p.cur().IsQueryKeyword("offset") {
		p.advance()
		*offset = p.ParseExpression()
	}
}

// parseOrder accepts either prefix (++name / --name) or postfix
// (name ++ / name --) direction markers, since both spellings appear
// across the spec's own prose and illustrative query text.
func (p *Parser) parseOrder() *ast.Order {
	expr := p.ParseExpression()
	if u, ok := expr.(*ast.Unary); ok {
		if id, ok := u.Operand.(*ast.Identifier); ok {
			return &ast.Order{Column: id.Name, Ascending: u.Op == "++"}
		}
	}
	if id, ok := expr.(*ast.Identifier); ok {
		return &ast.Order{Column: id.Name, Ascending: true}
	}
	p.errorf("expected column name with ++ or -- direction after 'order'")
	return &ast.Order{Ascending: true}
}
