package parser

import (
	"fmt"
	"strconv"

	"github.com/sambeau/odyssey/pkg/odyssey/ast"
	oerrors "github.com/sambeau/odyssey/pkg/odyssey/errors"
	"github.com/sambeau/odyssey/pkg/odyssey/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGN      // x = y (right associative)
	TERNARY     // c ? a : b
	EQUALS      // ==
	LESSGREATER // > or <
	SUM         // + or -
	PRODUCT     // * or /
	POWER       // ^ (right associative)
	PREFIX      // -X
	INDEX       // array[index], hash.field
	CALL        // myFunction(X)
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:   ASSIGN,
	lexer.QUESTION: TERNARY,
	lexer.EQ:       EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.CARET:    POWER,
	lexer.LBRACKET: INDEX,
	lexer.DOT:      INDEX,
	lexer.LPAREN:   CALL,
}

// binaryOperators maps operator tokens to the operator stored in the AST.
var binaryOperators = map[lexer.TokenType]string{
	lexer.PLUS:     ast.OpPlus,
	lexer.MINUS:    ast.OpMinus,
	lexer.ASTERISK: ast.OpTimes,
	lexer.SLASH:    ast.OpDivide,
	lexer.CARET:    ast.OpPower,
	lexer.LT:       ast.OpLess,
	lexer.EQ:       ast.OpEqual,
	lexer.GT:       ast.OpGreater,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	structuredErrors []*oerrors.OdysseyError

	prevToken lexer.Token
	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	// nesting counts the open (, [ and hash braces around the current
	// token. Line breaks only end an expression at nesting 0.
	nesting int
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.MINUS, p.parseNegatedExpression)
	p.registerPrefix(lexer.LPAREN, p.parseParenOrDefun)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseBraceExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for tt := range binaryOperators {
		p.registerInfix(tt, p.parseBinaryExpression)
	}
	p.registerInfix(lexer.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.QUESTION, p.parseConditionalExpression)
	p.registerInfix(lexer.LBRACKET, p.parseArrayLookup)
	p.registerInfix(lexer.DOT, p.parseDotAccess)
	p.registerInfix(lexer.LPAREN, p.parseFuncallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parser errors as strings (convenience method for tests).
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		if err.Line > 0 {
			result[i] = fmt.Sprintf("line %d, column %d: %s", err.Line, err.Column, err.Message)
		} else {
			result[i] = err.Message
		}
	}
	return result
}

// StructuredErrors returns parser errors as OdysseyError values.
func (p *Parser) StructuredErrors() []*oerrors.OdysseyError {
	return p.structuredErrors
}

// addError records a catalog error.
// Only the first error is recorded: later ones are usually cascading noise.
func (p *Parser) addError(code string, tok lexer.Token, data map[string]any) {
	if len(p.structuredErrors) > 0 {
		return
	}
	p.structuredErrors = append(p.structuredErrors, oerrors.NewWithPosition(code, tok.Line, tok.Column, data))
}

func (p *Parser) failed() bool {
	return len(p.structuredErrors) > 0
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances prevToken, curToken, and peekToken
func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses the whole input. Statements are separated by ';' or
// by a line break. Parsing stops at the first error.
func (p *Parser) ParseProgram() *ast.Program {
	return &ast.Program{Statements: p.parseStatements(lexer.EOF)}
}

// parseStatements parses statements until the end token is current.
func (p *Parser) parseStatements(end lexer.TokenType) []ast.Expression {
	stmts := []ast.Expression{}

	for !p.curTokenIs(end) && !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}

		stmt := p.parseExpression(LOWEST)
		if p.failed() {
			return stmts
		}
		stmts = append(stmts, stmt)

		if !p.atStatementBoundary(end) {
			p.addError("PARSE-0002", p.peekToken, map[string]any{"Token": tokenText(p.peekToken)})
			return stmts
		}
		p.nextToken()
	}

	return stmts
}

// atStatementBoundary reports whether the token after the current statement
// ends it: a separator, the enclosing end token, or anything on a later line.
func (p *Parser) atStatementBoundary(end lexer.TokenType) bool {
	switch p.peekToken.Type {
	case lexer.SEMICOLON, lexer.EOF, end:
		return true
	}
	return p.peekToken.Line > p.curToken.Line
}

// parseExpression parses expressions using Pratt parsing
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}

	leftExp := prefix()

	for !p.failed() && !p.peekTokenIs(lexer.SEMICOLON) && !p.lineBreakAhead() && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

// lineBreakAhead reports whether the next token starts a new line outside
// any brackets, which ends the statement even if it could continue it.
func (p *Parser) lineBreakAhead() bool {
	return p.nesting == 0 && p.peekToken.Line > p.curToken.Line
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError("PARSE-0004", p.curToken, map[string]any{"Literal": p.curToken.Literal})
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNegatedExpression() ast.Expression {
	expression := &ast.NegatedExpression{Token: p.curToken}

	p.nextToken()
	expression.Operand = p.parseExpression(PREFIX)

	return expression
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	expression := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: binaryOperators[p.curToken.Type],
		Left:     left,
	}

	precedence := p.curPrecedence()
	if p.curTokenIs(lexer.CARET) {
		// right associative: 2^3^2 is 2^(3^2)
		precedence--
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)

	return expression
}

func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	switch left.(type) {
	case *ast.Identifier, *ast.ArrayLookup, *ast.DotAccess:
	default:
		p.addError("PARSE-0005", p.curToken, map[string]any{"Target": left.String()})
		return nil
	}

	expression := &ast.AssignmentExpression{Token: p.curToken, Target: left}

	p.nextToken()
	expression.Value = p.parseExpression(ASSIGN - 1)

	return expression
}

func (p *Parser) parseConditionalExpression(condition ast.Expression) ast.Expression {
	expression := &ast.ConditionalExpression{Token: p.curToken, Condition: condition}

	p.nextToken()
	expression.Consequence = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.COLON) {
		return nil
	}

	p.nextToken()
	// c1 ? a : c2 ? b : c chains to the right
	expression.Alternative = p.parseExpression(TERNARY - 1)

	return expression
}

func (p *Parser) parseArrayLookup(array ast.Expression) ast.Expression {
	lookup := &ast.ArrayLookup{Token: p.curToken, Array: array}

	p.nesting++
	defer func() { p.nesting-- }()

	p.nextToken()
	lookup.Index = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}

	return lookup
}

func (p *Parser) parseDotAccess(object ast.Expression) ast.Expression {
	access := &ast.DotAccess{Token: p.curToken, Object: object}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	access.Field = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	return access
}

func (p *Parser) parseFuncallExpression(callee ast.Expression) ast.Expression {
	ident, ok := callee.(*ast.Identifier)
	if !ok {
		p.addError("PARSE-0008", p.curToken, map[string]any{"Callee": callee.String()})
		return nil
	}

	call := &ast.FuncallExpression{Token: p.curToken, Function: ident}
	call.Arguments = p.parseExpressionList(lexer.RPAREN)

	return call
}

// parseExpressionList parses comma separated expressions up to end. The
// current token is the opening delimiter.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	list := []ast.Expression{}

	p.nesting++
	defer func() { p.nesting-- }()

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))

	for !p.failed() && p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}
	array.Elements = p.parseExpressionList(lexer.RBRACKET)
	return array
}

// parseParenOrDefun parses either a parameter list followed by '=>' or a
// parenthesized expression. The lexer state is saved so a failed attempt at
// the parameter list can be rewound.
func (p *Parser) parseParenOrDefun() ast.Expression {
	openParen := p.curToken

	if params, ok := p.tryParameterList(); ok {
		defun := &ast.DefunExpression{Token: openParen, Params: params}
		p.nextToken() // ')'
		p.nextToken() // '=>'
		p.nextToken()
		defun.Body = p.parseExpression(LOWEST)
		return defun
	}

	paren := &ast.ParenthesizedExpression{Token: openParen}
	p.nesting++
	defer func() { p.nesting-- }()
	p.nextToken()
	paren.Inner = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return paren
}

// tryParameterList looks ahead from '(' for "ident, ident ) =>". On success
// the parser is left with curToken on the last parameter (or the '(' when
// there are none), so that the next two tokens are ')' and '=>'. On failure
// nothing is consumed.
func (p *Parser) tryParameterList() ([]string, bool) {
	state := p.l.SaveState()
	prev, cur, peek := p.prevToken, p.curToken, p.peekToken

	restore := func() {
		p.l.RestoreState(state)
		p.prevToken, p.curToken, p.peekToken = prev, cur, peek
	}

	params := []string{}
	if !p.peekTokenIs(lexer.RPAREN) {
		for {
			if !p.peekTokenIs(lexer.IDENT) {
				restore()
				return nil, false
			}
			p.nextToken()
			params = append(params, p.curToken.Literal)
			if !p.peekTokenIs(lexer.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if !p.peekTokenIs(lexer.RPAREN) || p.l.PeekToken().Type != lexer.ARROW {
		restore()
		return nil, false
	}

	return params, true
}

// parseBraceExpression decides between a hash literal and a block. '{' '}'
// is the empty hash, '{' key ':' starts a hash, anything else is a block.
func (p *Parser) parseBraceExpression() ast.Expression {
	if p.peekTokenIs(lexer.RBRACE) {
		hash := &ast.HashLiteral{Token: p.curToken, Pairs: []*ast.KeyValue{}}
		p.nextToken()
		return hash
	}

	if (p.peekTokenIs(lexer.IDENT) || p.peekTokenIs(lexer.STRING)) && p.l.PeekToken().Type == lexer.COLON {
		return p.parseHashLiteral()
	}

	return p.parseBlockExpression()
}

func (p *Parser) parseHashLiteral() ast.Expression {
	hash := &ast.HashLiteral{Token: p.curToken, Pairs: []*ast.KeyValue{}}

	p.nesting++
	defer func() { p.nesting-- }()

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		if !p.curTokenIs(lexer.IDENT) && !p.curTokenIs(lexer.STRING) {
			p.addError("PARSE-0006", p.curToken, map[string]any{"Key": tokenText(p.curToken)})
			return nil
		}

		kv := &ast.KeyValue{Token: p.curToken, Key: p.curToken.Literal}
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		kv.Value = p.parseExpression(LOWEST)
		if p.failed() {
			return nil
		}
		hash.Pairs = append(hash.Pairs, kv)

		if !p.peekTokenIs(lexer.RBRACE) && !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}

	return hash
}

func (p *Parser) parseBlockExpression() ast.Expression {
	block := &ast.BlockExpression{Token: p.curToken}

	// statements inside a block are line separated again
	outer := p.nesting
	p.nesting = 0
	defer func() { p.nesting = outer }()

	p.nextToken()
	block.Statements = p.parseStatements(lexer.RBRACE)
	if p.failed() {
		return nil
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.addError("PARSE-0001", p.curToken, map[string]any{"Expected": "'}'", "Got": tokenText(p.curToken)})
		return nil
	}

	return block
}

// Helper functions
func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.addError("PARSE-0001", p.peekToken, map[string]any{
		"Expected": tokenTypeToReadableName(t),
		"Got":      tokenText(p.peekToken),
	})
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	if tok.Type == lexer.ILLEGAL {
		if tok.Literal == "unterminated string" {
			p.addError("PARSE-0003", tok, nil)
		} else {
			p.addError("PARSE-0007", tok, map[string]any{"Char": tok.Literal})
		}
		return
	}
	p.addError("PARSE-0002", tok, map[string]any{"Token": tokenText(tok)})
}

// tokenText is the text shown for a token in error messages.
func tokenText(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return tok.Literal
}

func tokenTypeToReadableName(t lexer.TokenType) string {
	switch t {
	case lexer.IDENT:
		return "a name"
	case lexer.RPAREN:
		return "')'"
	case lexer.RBRACKET:
		return "']'"
	case lexer.RBRACE:
		return "'}'"
	case lexer.COLON:
		return "':'"
	case lexer.COMMA:
		return "','"
	case lexer.EOF:
		return "end of input"
	default:
		return t.String()
	}
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}
