package parse

import (
	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/token"
)

// parseSDL dispatches `create`, `drop`, and `grant` statements (§4.4).
func (p *Parser) parseSDL() ast.Node {
	switch {
	case p.cur().IsSDLKeyword("create"):
		return p.parseCreate()
	case p.cur().IsSDLKeyword("drop"):
		return p.parseDrop()
	case p.cur().IsSDLKeyword("grant"):
		return p.parseGrant()
	default:
		p.errorf("expected create, drop, or grant, got %q", p.cur().Text)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseCreate() ast.Node {
	start := p.advance().Span // 'create'
	switch {
	case p.cur().IsSDLKeyword("database"):
		p.advance()
		name, _ := p.expectIdentifier()
		return &ast.CreateDatabase{Span: start, Name: name}
	case p.cur().IsSDLKeyword("table"):
		p.advance()
		return p.parseCreateTable(start)
	case p.cur().IsSDLKeyword("policy"):
		p.advance()
		return p.parseCreatePolicy(start)
	case p.cur().IsSDLKeyword("role"):
		p.advance()
		name, _ := p.expectIdentifier()
		return &ast.CreateRole{Span: start, Name: name}
	case p.cur().IsSDLKeyword("user"):
		p.advance()
		return p.parseCreateUser(start)
	default:
		p.errorf("expected database, table, policy, role, or user after 'create', got %q", p.cur().Text)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseCreateTable(start ast.Span) ast.Node {
	name, _ := p.expectIdentifier()
	p.expectSymbol("{")
	var cols []ast.ColumnDef
	for !p.cur().IsSymbol("}") && !p.atEOF() {
		cols = append(cols, p.parseColumnDef())
		if p.cur().IsSymbol(";") || p.cur().IsSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol("}")
	return &ast.CreateTable{Span: start, Name: name, Columns: cols}
}

func (p *Parser) parseColumnDef() ast.ColumnDef {
	name, _ := p.expectIdentifier()
	p.expectSymbol(":")
	ctype := p.parseColumnTypeRef()
	col := ast.ColumnDef{Name: name, Type: ctype}
	for p.cur().IsSymbol(",") {
		p.advance()
		switch {
		case p.cur().IsSDLKeyword("unique"):
			p.advance()
			col.Unique = true
		case p.cur().IsSDLKeyword("required"):
			p.advance()
			col.NotNull = true
		case p.cur().IsSDLKeyword("default"):
			p.advance()
			col.Default = p.ParseExpression()
		case p.cur().Kind == token.KindIdentifier && p.cur().Text == "read_only":
			p.advance()
			col.ReadOnly = true
		default:
			p.errorf("unknown column flag %q", p.cur().Text)
			p.advance()
		}
	}
	return col
}

// parseColumnTypeRef parses a column type declaration: u8..u64, i8..i64,
// f32, f64, char, fixed(n), time(unit), bool, binary, uuid (§4.4).
func (p *Parser) parseColumnTypeRef() ast.ColumnTypeRef {
	name, ok := p.expectIdentifier()
	if !ok {
		return ast.ColumnTypeRef{Name: "u64"}
	}
	switch name {
	case "fixed":
		p.expectSymbol("(")
		n := 0
		if p.cur().Kind == token.KindUInt {
			n = int(p.cur().UInt)
			p.advance()
		} else {
			p.errorf("expected integer length inside fixed(...)")
		}
		p.expectSymbol(")")
		return ast.ColumnTypeRef{Name: "fixed", FixedLen: n}
	case "time":
		p.expectSymbol("(")
		unit, _ := p.expectIdentifier()
		p.expectSymbol(")")
		return ast.ColumnTypeRef{Name: "time", TimestampUnit: unit}
	default:
		return ast.ColumnTypeRef{Name: name}
	}
}

// parseCreatePolicy parses `create policy "<name>" for <table>.<action> <condition>;`.
func (p *Parser) parseCreatePolicy(start ast.Span) ast.Node {
	name := ""
	if p.cur().Kind == token.KindString {
		name = p.cur().String
		p.advance()
	} else {
		p.errorf("expected policy name string, got %q", p.cur().Text)
	}
	if !p.cur().IsSDLKeyword("for") {
		p.errorf("expected 'for' after policy name, got %q", p.cur().Text)
	} else {
		p.advance()
	}
	table, _ := p.expectIdentifier()
	p.expectSymbol(".")
	actionTok := p.advance()
	condition := p.ParseExpression()
	return &ast.CreateRlsPolicy{
		Span:  start,
		Table: table,
		Policy: ast.RlsPolicyDef{
			Name:      name,
			Action:    actionTok.Text,
			Condition: condition,
		},
	}
}

// parseCreateUser parses `create user <name> <password-string> [superuser];`.
func (p *Parser) parseCreateUser(start ast.Span) ast.Node {
	name, _ := p.expectIdentifier()
	password := ""
	if p.cur().Kind == token.KindString {
		password = p.cur().String
		p.advance()
	} else {
		p.errorf("expected password string literal, got %q", p.cur().Text)
	}
	isSuper := false
	if p.cur().Kind == token.KindIdentifier && p.cur().Text == "superuser" {
		p.advance()
		isSuper = true
	}
	return &ast.CreateUser{Span: start, Name: name, Password: password, IsSuperuser: isSuper}
}

var dropKinds = map[string]bool{"database": true, "table": true, "policy": true, "role": true, "user": true}

func (p *Parser) parseDrop() ast.Node {
	start := p.advance().Span // 'drop'
	t := p.cur()
	if !dropKinds[t.Text] || (t.Kind != token.KindSDLKeyword && t.Kind != token.KindIdentifier) {
		p.errorf("expected database, table, policy, role, or user after 'drop', got %q", t.Text)
		p.synchronize()
		return nil
	}
	p.advance()
	name, _ := p.expectIdentifier()
	return &ast.Drop{Span: start, Kind: t.Text, Name: name}
}

var grantActionWords = map[string]bool{
	"select": true, "insert": true, "update": true, "delete": true,
	"alter": true, "drop": true, "connect": true, "grant": true,
}

// parseGrant parses `grant role <name> for <to>;` and
// `grant <action,...> <objectKind> <objectName> for <to>;`.
func (p *Parser) parseGrant() ast.Node {
	start := p.advance().Span // 'grant'
	if p.cur().IsSDLKeyword("role") {
		p.advance()
		role, _ := p.expectIdentifier()
		if !p.cur().IsSDLKeyword("for") {
			p.errorf("expected 'for' after role name, got %q", p.cur().Text)
		} else {
			p.advance()
		}
		to, _ := p.expectIdentifier()
		return &ast.GrantRole{Span: start, Role: role, To: to}
	}

	var actions []string
	for {
		actions = append(actions, p.actionWord())
		if p.cur().IsSymbol(",") {
			p.advance()
			continue
		}
		break
	}

	objectKind := p.objectKindWord()
	objectName, _ := p.expectIdentifier()
	column := ""
	if objectKind == "column" && p.cur().IsSymbol(".") {
		p.advance()
		column, _ = p.expectIdentifier()
	}

	if !p.cur().IsSDLKeyword("for") {
		p.errorf("expected 'for' before grantee, got %q", p.cur().Text)
	} else {
		p.advance()
	}
	to, _ := p.expectIdentifier()

	return &ast.GrantAction{
		Span:       start,
		Actions:    actions,
		ObjectKind: objectKind,
		ObjectName: objectName,
		Column:     column,
		To:         to,
	}
}

var grantObjectKinds = map[string]bool{"database": true, "table": true, "column": true, "function": true}

// objectKindWord consumes the object-kind word in a grant-action statement
// ("database", "table", "column", "function"); these are SDL keywords
// (table/database/column) or plain identifiers (function), never KindIdentifier
// alone, so expectIdentifier can't be reused here.
func (p *Parser) objectKindWord() string {
	t := p.cur()
	if grantObjectKinds[t.Text] && (t.Kind == token.KindSDLKeyword || t.Kind == token.KindIdentifier) {
		p.advance()
		return t.Text
	}
	p.errorf("expected database, table, column, or function, got %q", t.Text)
	p.advance()
	return t.Text
}

func (p *Parser) actionWord() string {
	t := p.cur()
	if t.Kind == token.KindQueryKeyword || t.Kind == token.KindSDLKeyword || t.Kind == token.KindIdentifier {
		if grantActionWords[t.Text] || t.Text == "all" {
			p.advance()
			return t.Text
		}
	}
	p.errorf("expected a grantable action, got %q", t.Text)
	p.advance()
	return t.Text
}
