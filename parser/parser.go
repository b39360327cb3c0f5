// Package parser implements a Pratt (top-down operator precedence) parser
// that turns a token stream into an ast.Program.
package parser

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"quill/ast"
	"quill/token"
)

// Precedence levels, lowest to highest binding power.
const (
	_ int = iota
	LOWEST
	LOGIC      // && ||
	BITWISE    // & |
	EQUALS     // == !=
	LESSGREATER // < >
	SUM        // + -
	PRODUCT    // * /
	PREFIX     // -x !x
	CALL       // fn(x)
	INDEX      // arr[x]
)

var precedences = map[token.TokenType]int{
	token.LOGICAL_AND: LOGIC,
	token.LOGICAL_OR:  LOGIC,
	token.BIT_AND:     BITWISE,
	token.BIT_OR:      BITWISE,
	token.EQUAL_EQUAL: EQUALS,
	token.NOT_EQUAL:   EQUALS,
	token.LESS:        LESSGREATER,
	token.LARGER:      LESSGREATER,
	token.ADD:         SUM,
	token.SUB:         SUM,
	token.DIV:         PRODUCT,
	token.MULT:        PRODUCT,
	token.LPA:         CALL,
	token.LBRACKET:    INDEX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser consumes a flat token slice (produced by the lexer) and builds an
// AST, accumulating diagnostics instead of stopping at the first one.
type Parser struct {
	tokens   []token.Token
	position int

	errs *multierror.Error

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// New constructs a Parser over tokens (as returned by lexer.Scan) and wires
// up the prefix/infix parse-function registries.
func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENTIFIER: p.parseIdentifier,
		token.INT:        p.parseIntegerLiteral,
		token.STRING:     p.parseStringLiteral,
		token.BANG:       p.parsePrefixExpression,
		token.SUB:        p.parsePrefixExpression,
		token.TRUE:       p.parseBoolean,
		token.FALSE:      p.parseBoolean,
		token.LPA:        p.parseGroupedExpression,
		token.IF:         p.parseIfExpression,
		token.FUNC:       p.parseFunctionLiteral,
		token.LBRACKET:   p.parseArrayLiteral,
		token.LCUR:       p.parseHashLiteral,
		token.MACRO:      p.parseMacroLiteral,
	}

	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.ADD:         p.parseInfixExpression,
		token.SUB:         p.parseInfixExpression,
		token.DIV:         p.parseInfixExpression,
		token.MULT:        p.parseInfixExpression,
		token.EQUAL_EQUAL: p.parseInfixExpression,
		token.NOT_EQUAL:   p.parseInfixExpression,
		token.LESS:        p.parseInfixExpression,
		token.LARGER:      p.parseInfixExpression,
		token.LOGICAL_AND: p.parseInfixExpression,
		token.LOGICAL_OR:  p.parseInfixExpression,
		token.BIT_AND:     p.parseInfixExpression,
		token.BIT_OR:      p.parseInfixExpression,
		token.LPA:         p.parseCallExpression,
		token.LBRACKET:    p.parseIndexExpression,
	}

	return p
}

// Errors returns the accumulated syntax errors, wrapped as a single error
// (nil if parsing found none).
func (p *Parser) Errors() error {
	return p.errs.ErrorOrNil()
}

func (p *Parser) addError(msg string) {
	tok := p.current()
	p.errs = multierror.Append(p.errs, CreateSyntaxError(tok.Line, tok.Column, msg))
}

func (p *Parser) current() token.Token {
	return p.tokens[p.position]
}

func (p *Parser) peekToken() token.Token {
	if p.position+1 < len(p.tokens) {
		return p.tokens[p.position+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if tok.TokenType != token.EOF {
		p.position++
	}
	return tok
}

func (p *Parser) currentIs(tt token.TokenType) bool { return p.current().TokenType == tt }
func (p *Parser) peekIs(tt token.TokenType) bool     { return p.peekToken().TokenType == tt }

// expectPeek advances past the next token if it has type tt, else records a
// diagnostic and leaves the position unchanged.
func (p *Parser) expectPeek(tt token.TokenType) bool {
	if p.peekIs(tt) {
		p.advance()
		return true
	}
	p.addError(fmt.Sprintf("expected next token to be %s, got %s instead", tt, p.peekToken().TokenType))
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken().TokenType]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) currentPrecedence() int {
	if prec, ok := precedences[p.current().TokenType]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses the entire token stream into a Program, collecting
// every statement it can and every error it encounters along the way.
func (p *Parser) ParseProgram() (ast.Program, error) {
	program := ast.Program{}

	for !p.currentIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.advance()
	}

	return program, p.Errors()
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.current().TokenType {
	case token.LET:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	tok := p.current()

	if !p.expectPeek(token.IDENTIFIER) {
		p.recoverToStatementBoundary()
		return nil
	}
	name := ast.Identifier{Token: p.current(), Value: p.current().Literal}

	if !p.expectPeek(token.ASSIGN) {
		p.recoverToStatementBoundary()
		return nil
	}
	p.advance()

	value := p.parseExpression(LOWEST)
	if fl, ok := value.(ast.FunctionLit); ok {
		fl.Name = name.Value
		value = fl
	}

	if p.peekIs(token.SEMICOLON) {
		p.advance()
	}

	return ast.LetStatement{Token: tok, Name: name, Value: value}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.current()
	p.advance()

	value := p.parseExpression(LOWEST)

	if p.peekIs(token.SEMICOLON) {
		p.advance()
	}

	return ast.ReturnStatement{Token: tok, Value: value}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.current()
	expr := p.parseExpression(LOWEST)

	if p.peekIs(token.SEMICOLON) {
		p.advance()
	}

	return ast.ExpressionStmt{Token: tok, Expression: expr}
}

// recoverToStatementBoundary skips tokens until the next statement-ending
// `;` or EOF, so a malformed `let` doesn't desynchronise the rest of the
// parse.
func (p *Parser) recoverToStatementBoundary() {
	for !p.currentIs(token.SEMICOLON) && !p.currentIs(token.EOF) {
		p.advance()
	}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.current().TokenType]
	if prefix == nil {
		p.addError(fmt.Sprintf("no prefix parse function for %s found", p.current().TokenType))
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken().TokenType]
		if infix == nil {
			return left
		}
		p.advance()
		left = infix(left)
	}

	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.current()
	return ast.Identifier{Token: tok, Value: tok.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.current()
	value, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.addError(fmt.Sprintf("Could not parse %s as integer", tok.Literal))
		return nil
	}
	return ast.IntegerLit{Token: tok, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.current()
	return ast.StringLit{Token: tok, Value: tok.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	tok := p.current()
	return ast.BooleanLit{Token: tok, Value: p.currentIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.current()
	p.advance()
	right := p.parseExpression(PREFIX)
	return ast.PrefixExpr{Token: tok, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.current()
	precedence := p.currentPrecedence()
	p.advance()
	right := p.parseExpression(precedence)
	return ast.InfixExpr{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.advance()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPA) {
		return nil
	}
	return expr
}

func (p *Parser) parseIfExpression() ast.Expression {
	tok := p.current()

	if !p.expectPeek(token.LPA) {
		return nil
	}
	p.advance()
	condition := p.parseExpression(LOWEST)

	if !p.expectPeek(token.RPA) {
		return nil
	}
	if !p.expectPeek(token.LCUR) {
		return nil
	}

	consequence := p.parseBlockStatement()
	expr := ast.IfExpr{Token: tok, Condition: condition, Consequence: consequence}

	if p.peekIs(token.ELSE) {
		p.advance()
		if !p.expectPeek(token.LCUR) {
			return expr
		}
		alt := p.parseBlockStatement()
		expr.Alternative = &alt
	}

	return expr
}

func (p *Parser) parseBlockStatement() ast.BlockStmt {
	block := ast.BlockStmt{Token: p.current()}
	p.advance()

	for !p.currentIs(token.RCUR) && !p.currentIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.advance()
	}

	return block
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.current()

	if !p.expectPeek(token.LPA) {
		return nil
	}
	params := p.parseFunctionParameters()

	if !p.expectPeek(token.LCUR) {
		return nil
	}
	body := p.parseBlockStatement()

	return ast.FunctionLit{Token: tok, Parameters: params, Body: body}
}

func (p *Parser) parseFunctionParameters() []ast.Identifier {
	var params []ast.Identifier

	if p.peekIs(token.RPA) {
		p.advance()
		return params
	}

	p.advance()
	params = append(params, ast.Identifier{Token: p.current(), Value: p.current().Literal})

	for p.peekIs(token.COMMA) {
		p.advance()
		p.advance()
		params = append(params, ast.Identifier{Token: p.current(), Value: p.current().Literal})
	}

	if !p.expectPeek(token.RPA) {
		return params
	}

	return params
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.current()
	args := p.parseExpressionList(token.RPA)
	return ast.CallExpr{Token: tok, Callee: callee, Argument: args}
}

func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	var list []ast.Expression

	if p.peekIs(end) {
		p.advance()
		return list
	}

	p.advance()
	list = append(list, p.parseExpression(LOWEST))

	for p.peekIs(token.COMMA) {
		p.advance()
		p.advance()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return list
	}

	return list
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.current()
	elements := p.parseExpressionList(token.RBRACKET)
	return ast.ArrayLit{Token: tok, Elements: elements}
}

func (p *Parser) parseIndexExpression(target ast.Expression) ast.Expression {
	tok := p.current()
	p.advance()
	index := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return ast.IndexExpr{Token: tok, Target: target, Index: index}
}

func (p *Parser) parseHashLiteral() ast.Expression {
	tok := p.current()
	hash := ast.HashLit{Token: tok}

	for !p.peekIs(token.RCUR) {
		p.advance()
		key := p.parseExpression(LOWEST)

		if !p.expectPeek(token.COLON) {
			return hash
		}
		p.advance()
		value := p.parseExpression(LOWEST)

		hash.Pairs = append(hash.Pairs, ast.HashPair{Key: key, Value: value})

		if !p.peekIs(token.RCUR) && !p.expectPeek(token.COMMA) {
			return hash
		}
	}

	if !p.expectPeek(token.RCUR) {
		return hash
	}

	return hash
}

func (p *Parser) parseMacroLiteral() ast.Expression {
	tok := p.current()

	if !p.expectPeek(token.LPA) {
		return nil
	}
	params := p.parseFunctionParameters()

	if !p.expectPeek(token.LCUR) {
		return nil
	}
	body := p.parseBlockStatement()

	return ast.MacroLit{Token: tok, Parameters: params, Body: body}
}
