// Package ast defines the syntax tree built by the parser and walked by the
// evaluator. Nodes are never modified after the parser returns them.
//
// String renders a node's canonical text: the compact source form with
// no optional whitespace (12+4, a[1]=4, (x)=>{x+1}).
package ast

import (
	"bytes"
	"strings"

	"github.com/sambeau/odyssey/pkg/odyssey/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
	Pos() (line, column int)
}

// Expression represents expression nodes. Every statement in the language is
// an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program represents the root node of every AST
type Program struct {
	Statements []Expression
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() (int, int) {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return 0, 0
}

// String joins the canonical text of each statement with ';'.
func (p *Program) String() string {
	return joinStatements(p.Statements)
}

func joinStatements(stmts []Expression) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, ";")
}

func joinExpressions(exprs []Expression, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

// Identifier is a name: a variable, a parameter or a callee.
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() (int, int)      { return i.Token.Line, i.Token.Column }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral holds a decimal integer.
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Pos() (int, int)      { return il.Token.Line, il.Token.Column }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// StringLiteral holds unescaped string text.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Pos() (int, int)      { return sl.Token.Line, sl.Token.Column }
func (sl *StringLiteral) String() string       { return `"` + sl.Value + `"` }

// ArrayLiteral is [e0,e1,...].
type ArrayLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Pos() (int, int)      { return al.Token.Line, al.Token.Column }
func (al *ArrayLiteral) String() string {
	return "[" + joinExpressions(al.Elements, ",") + "]"
}

// ArrayLookup is array[index]. Array is an Identifier, another ArrayLookup or
// a DotAccess.
type ArrayLookup struct {
	Token lexer.Token // the '[' token
	Array Expression
	Index Expression
}

func (al *ArrayLookup) expressionNode()      {}
func (al *ArrayLookup) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLookup) Pos() (int, int)      { return al.Token.Line, al.Token.Column }
func (al *ArrayLookup) String() string {
	return al.Array.String() + "[" + al.Index.String() + "]"
}

// KeyValue is one key:value entry of a hash literal.
type KeyValue struct {
	Token lexer.Token // the key token
	Key   string
	Value Expression
}

func (kv *KeyValue) expressionNode()      {}
func (kv *KeyValue) TokenLiteral() string { return kv.Token.Literal }
func (kv *KeyValue) Pos() (int, int)      { return kv.Token.Line, kv.Token.Column }
func (kv *KeyValue) String() string       { return kv.Key + ":" + kv.Value.String() }

// HashLiteral is {k0:v0, k1:v1}. Pairs keep source order.
type HashLiteral struct {
	Token lexer.Token // the '{' token
	Pairs []*KeyValue
}

func (hl *HashLiteral) expressionNode()      {}
func (hl *HashLiteral) TokenLiteral() string { return hl.Token.Literal }
func (hl *HashLiteral) Pos() (int, int)      { return hl.Token.Line, hl.Token.Column }
func (hl *HashLiteral) String() string {
	parts := make([]string, len(hl.Pairs))
	for i, kv := range hl.Pairs {
		parts[i] = kv.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// DotAccess is object.field.
type DotAccess struct {
	Token  lexer.Token // the '.' token
	Object Expression
	Field  *Identifier
}

func (da *DotAccess) expressionNode()      {}
func (da *DotAccess) TokenLiteral() string { return da.Token.Literal }
func (da *DotAccess) Pos() (int, int)      { return da.Token.Line, da.Token.Column }
func (da *DotAccess) String() string       { return da.Object.String() + "." + da.Field.Value }

// Binary operators. OpEqual is rendered as "==" in canonical text.
const (
	OpPlus    = "+"
	OpMinus   = "-"
	OpTimes   = "*"
	OpDivide  = "/"
	OpPower   = "^"
	OpLess    = "<"
	OpEqual   = "="
	OpGreater = ">"
)

// BinaryExpression is left op right.
type BinaryExpression struct {
	Token    lexer.Token // the operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Pos() (int, int)      { return be.Token.Line, be.Token.Column }
func (be *BinaryExpression) String() string {
	op := be.Operator
	if op == OpEqual {
		op = "=="
	}
	return be.Left.String() + op + be.Right.String()
}

// ConditionalExpression is condition?consequence:alternative.
type ConditionalExpression struct {
	Token       lexer.Token // the '?' token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (ce *ConditionalExpression) expressionNode()      {}
func (ce *ConditionalExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ConditionalExpression) Pos() (int, int)      { return ce.Token.Line, ce.Token.Column }
func (ce *ConditionalExpression) String() string {
	return ce.Condition.String() + "?" + ce.Consequence.String() + ":" + ce.Alternative.String()
}

// NegatedExpression is -operand.
type NegatedExpression struct {
	Token   lexer.Token // the '-' token
	Operand Expression
}

func (ne *NegatedExpression) expressionNode()      {}
func (ne *NegatedExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NegatedExpression) Pos() (int, int)      { return ne.Token.Line, ne.Token.Column }
func (ne *NegatedExpression) String() string       { return "-" + ne.Operand.String() }

// ParenthesizedExpression is (inner).
type ParenthesizedExpression struct {
	Token lexer.Token // the '(' token
	Inner Expression
}

func (pe *ParenthesizedExpression) expressionNode()      {}
func (pe *ParenthesizedExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *ParenthesizedExpression) Pos() (int, int)      { return pe.Token.Line, pe.Token.Column }
func (pe *ParenthesizedExpression) String() string       { return "(" + pe.Inner.String() + ")" }

// AssignmentExpression is target=value. Target is an Identifier, an
// ArrayLookup or a DotAccess.
type AssignmentExpression struct {
	Token  lexer.Token // the '=' token
	Target Expression
	Value  Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) Pos() (int, int)      { return ae.Token.Line, ae.Token.Column }
func (ae *AssignmentExpression) String() string {
	return ae.Target.String() + "=" + ae.Value.String()
}

// DefunExpression is (p0,p1)=>body.
type DefunExpression struct {
	Token  lexer.Token // the '(' token
	Params []string
	Body   Expression
}

func (de *DefunExpression) expressionNode()      {}
func (de *DefunExpression) TokenLiteral() string { return de.Token.Literal }
func (de *DefunExpression) Pos() (int, int)      { return de.Token.Line, de.Token.Column }
func (de *DefunExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(strings.Join(de.Params, ","))
	out.WriteString(")=>{")
	out.WriteString(BodyString(de.Body))
	out.WriteString("}")

	return out.String()
}

// BodyString renders a function body without the braces a block body
// would otherwise add, so that (x)=>{x+1} and (x)=>x+1 render alike.
func BodyString(body Expression) string {
	if b, ok := body.(*BlockExpression); ok {
		return joinStatements(b.Statements)
	}
	return body.String()
}

// FuncallExpression is function(args...).
type FuncallExpression struct {
	Token     lexer.Token // the '(' token
	Function  *Identifier
	Arguments []Expression
}

func (fc *FuncallExpression) expressionNode()      {}
func (fc *FuncallExpression) TokenLiteral() string { return fc.Token.Literal }
func (fc *FuncallExpression) Pos() (int, int)      { return fc.Function.Pos() }
func (fc *FuncallExpression) String() string {
	return fc.Function.Value + "(" + joinExpressions(fc.Arguments, ",") + ")"
}

// BlockExpression is {s0;s1;...}. Its value is the value of the last
// statement.
type BlockExpression struct {
	Token      lexer.Token // the '{' token
	Statements []Expression
}

func (be *BlockExpression) expressionNode()      {}
func (be *BlockExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BlockExpression) Pos() (int, int)      { return be.Token.Line, be.Token.Column }
func (be *BlockExpression) String() string       { return "{" + joinStatements(be.Statements) + "}" }
