package ast

import (
	"bytes"

	"quill/token"
)

// LetStatement is `let name = value;`.
type LetStatement struct {
	Token token.Token // the `let` token
	Name  Identifier
	Value Expression
}

func (ls LetStatement) statementNode()     {}
func (ls LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls LetStatement) String() string {
	var out bytes.Buffer
	out.WriteString(ls.TokenLiteral() + " ")
	out.WriteString(ls.Name.String())
	out.WriteString(" = ")
	if ls.Value != nil {
		out.WriteString(ls.Value.String())
	}
	out.WriteString(";")
	return out.String()
}
func (ls LetStatement) Accept(v StatementVisitor) any {
	return v.VisitLetStatement(ls)
}

// ReturnStatement is `return value;`.
type ReturnStatement struct {
	Token token.Token // the `return` token
	Value Expression
}

func (rs ReturnStatement) statementNode()     {}
func (rs ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs ReturnStatement) String() string {
	var out bytes.Buffer
	out.WriteString(rs.TokenLiteral() + " ")
	if rs.Value != nil {
		out.WriteString(rs.Value.String())
	}
	out.WriteString(";")
	return out.String()
}
func (rs ReturnStatement) Accept(v StatementVisitor) any {
	return v.VisitReturnStatement(rs)
}

// ExpressionStmt wraps a bare expression used as a statement, e.g.
// `foo + bar;`.
type ExpressionStmt struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es ExpressionStmt) statementNode()     {}
func (es ExpressionStmt) TokenLiteral() string { return es.Token.Literal }
func (es ExpressionStmt) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}
func (es ExpressionStmt) Accept(v StatementVisitor) any {
	return v.VisitExpressionStmt(es)
}

// BlockStmt is a `{ ... }` sequence of statements.
type BlockStmt struct {
	Token      token.Token // the `{` token
	Statements []Statement
}

func (bs BlockStmt) statementNode()     {}
func (bs BlockStmt) TokenLiteral() string { return bs.Token.Literal }
func (bs BlockStmt) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
	}
	out.WriteString("}")
	return out.String()
}
func (bs BlockStmt) Accept(v StatementVisitor) any {
	return v.VisitBlockStmt(bs)
}

// Program is the root AST node: a sequence of top-level statements.
type Program struct {
	Statements []Statement
}

func (p Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}
