// Package evaluator walks the Odyssey syntax tree and computes values.
package evaluator

import (
	"github.com/sambeau/odyssey/pkg/odyssey/ast"
	oerrors "github.com/sambeau/odyssey/pkg/odyssey/errors"
)

// Eval evaluates node in env. Evaluation stops at the first error, which is
// always an *errors.OdysseyError carrying the position of the node that
// raised it. Frames pushed for calls are popped on every path, so after an
// error env is back at the depth it had when Eval was called.
func Eval(node ast.Node, env *Environment) (Object, error) {
	switch node := node.(type) {

	// Statement sequences
	case *ast.Program:
		return evalStatements(node.Statements, "program", node, env)

	case *ast.BlockExpression:
		return evalStatements(node.Statements, "block", node, env)

	// Literals
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &String{Value: node.Value}, nil

	case *ast.ArrayLiteral:
		elements, err := evalExpressions(node.Elements, env)
		if err != nil {
			return nil, err
		}
		return &Collection{Elements: elements}, nil

	case *ast.HashLiteral:
		return evalHashLiteral(node, env)

	case *ast.KeyValue:
		return Eval(node.Value, env)

	case *ast.Identifier:
		val, err := env.Retrieve(node.Value)
		if err != nil {
			return nil, positioned(err, node)
		}
		return val, nil

	// Operators
	case *ast.BinaryExpression:
		left, err := Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		val, err := evalBinaryExpression(node.Operator, left, right)
		if err != nil {
			return nil, positioned(err, node)
		}
		return val, nil

	case *ast.NegatedExpression:
		operand, err := Eval(node.Operand, env)
		if err != nil {
			return nil, err
		}
		i, ok := operand.(*Integer)
		if !ok {
			return nil, newError(node, "TYPE-0006", map[string]any{"Kind": KindOf(operand)})
		}
		return i.Negate(), nil

	case *ast.ParenthesizedExpression:
		return Eval(node.Inner, env)

	case *ast.ConditionalExpression:
		return evalConditionalExpression(node, env)

	// Access
	case *ast.ArrayLookup:
		coll, index, err := evalLookupTarget(node, env)
		if err != nil {
			return nil, err
		}
		return coll.At(index), nil

	case *ast.DotAccess:
		hash, err := evalHashTarget(node, env)
		if err != nil {
			return nil, err
		}
		return hash.Get(node.Field.Value), nil

	case *ast.AssignmentExpression:
		return evalAssignmentExpression(node, env)

	// Functions
	case *ast.DefunExpression:
		return &Function{Params: node.Params, Body: node.Body, Captured: env.Snapshot()}, nil

	case *ast.FuncallExpression:
		if node.Function.Value == PrintBuiltin {
			return evalPrint(node, env)
		}
		return evalFuncallExpression(node, env)
	}

	return nil, oerrors.NewSimple(oerrors.ClassType, "cannot evaluate node")
}

func evalStatements(stmts []ast.Expression, what string, node ast.Node, env *Environment) (Object, error) {
	if len(stmts) == 0 {
		return nil, newError(node, "EMPTY-0001", map[string]any{"What": what})
	}

	var result Object
	for _, stmt := range stmts {
		val, err := Eval(stmt, env)
		if err != nil {
			return nil, err
		}
		result = val
	}

	return result, nil
}

func evalExpressions(exps []ast.Expression, env *Environment) ([]Object, error) {
	result := make([]Object, 0, len(exps))

	for _, e := range exps {
		val, err := Eval(e, env)
		if err != nil {
			return nil, err
		}
		result = append(result, val)
	}

	return result, nil
}

func evalHashLiteral(node *ast.HashLiteral, env *Environment) (Object, error) {
	hash := NewHash()

	for _, kv := range node.Pairs {
		val, err := Eval(kv, env)
		if err != nil {
			return nil, err
		}
		hash.Set(kv.Key, val)
	}

	return hash, nil
}

func evalBinaryExpression(operator string, left, right Object) (Object, error) {
	switch {
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return evalIntegerBinaryExpression(operator, left.(*Integer), right.(*Integer))
	case left.Type() == STRING_OBJ && operator == ast.OpPlus:
		return left.(*String).Plus(right)
	}

	return nil, oerrors.New("TYPE-0001", map[string]any{
		"Operator": displayOperator(operator),
		"Left":     KindOf(left),
		"Right":    KindOf(right),
	})
}

func evalIntegerBinaryExpression(operator string, left, right *Integer) (Object, error) {
	switch operator {
	case ast.OpPlus:
		return left.Plus(right), nil
	case ast.OpMinus:
		return left.Minus(right), nil
	case ast.OpTimes:
		return left.Times(right), nil
	case ast.OpDivide:
		return left.Div(right)
	case ast.OpPower:
		return left.Pow(right)
	case ast.OpLess:
		return left.IsLessThan(right), nil
	case ast.OpEqual:
		return left.IsEqualTo(right), nil
	case ast.OpGreater:
		return left.IsGreaterThan(right), nil
	}
	return nil, oerrors.New("OP-0003", map[string]any{"Operator": operator})
}

func displayOperator(operator string) string {
	if operator == ast.OpEqual {
		return "=="
	}
	return operator
}

// evalConditionalExpression evaluates only the branch the condition selects.
func evalConditionalExpression(node *ast.ConditionalExpression, env *Environment) (Object, error) {
	condition, err := Eval(node.Condition, env)
	if err != nil {
		return nil, err
	}

	flag, ok := condition.(*Boolean)
	if !ok {
		return nil, newError(node, "TYPE-0005", map[string]any{"Kind": KindOf(condition)})
	}

	if flag.Value {
		return Eval(node.Consequence, env)
	}
	return Eval(node.Alternative, env)
}

// evalLookupTarget evaluates the collection and index of a[i].
func evalLookupTarget(node *ast.ArrayLookup, env *Environment) (*Collection, int64, error) {
	array, err := Eval(node.Array, env)
	if err != nil {
		return nil, 0, err
	}
	coll, ok := array.(*Collection)
	if !ok {
		return nil, 0, newError(node, "TYPE-0002", map[string]any{"Kind": KindOf(array)})
	}

	index, err := Eval(node.Index, env)
	if err != nil {
		return nil, 0, err
	}
	i, ok := index.(*Integer)
	if !ok {
		return nil, 0, newError(node, "INDEX-0001", map[string]any{"Kind": KindOf(index)})
	}

	return coll, i.Value, nil
}

// evalHashTarget evaluates the hash of h.field.
func evalHashTarget(node *ast.DotAccess, env *Environment) (*Hash, error) {
	object, err := Eval(node.Object, env)
	if err != nil {
		return nil, err
	}
	hash, ok := object.(*Hash)
	if !ok {
		return nil, newError(node, "TYPE-0003", map[string]any{"Field": node.Field.Value, "Kind": KindOf(object)})
	}
	return hash, nil
}

// evalAssignmentExpression evaluates the value first, then the target's
// container, then stores. The result is the assigned value.
func evalAssignmentExpression(node *ast.AssignmentExpression, env *Environment) (Object, error) {
	val, err := Eval(node.Value, env)
	if err != nil {
		return nil, err
	}

	switch target := node.Target.(type) {
	case *ast.Identifier:
		return env.Put(target.Value, val), nil

	case *ast.ArrayLookup:
		coll, index, err := evalLookupTarget(target, env)
		if err != nil {
			return nil, err
		}
		stored, err := coll.Put(val, index)
		if err != nil {
			return nil, positioned(err, target)
		}
		return stored, nil

	case *ast.DotAccess:
		hash, err := evalHashTarget(target, env)
		if err != nil {
			return nil, err
		}
		return hash.Set(target.Field.Value, val), nil
	}

	return nil, newError(node, "PARSE-0005", map[string]any{"Target": node.Target.String()})
}

func evalFuncallExpression(node *ast.FuncallExpression, env *Environment) (Object, error) {
	name := node.Function.Value

	callee, err := Eval(node.Function, env)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*Function)
	if !ok {
		return nil, newError(node, "TYPE-0004", map[string]any{"Name": name, "Kind": KindOf(callee)})
	}

	args, err := evalExpressions(node.Arguments, env)
	if err != nil {
		return nil, err
	}
	if len(args) != len(fn.Params) {
		return nil, newError(node, "ARITY-0001", map[string]any{"Name": name, "Want": len(fn.Params), "Got": len(args)})
	}

	return applyFunction(fn, args, env)
}

// applyFunction runs fn's body in a new frame and pops it on every path.
func applyFunction(fn *Function, args []Object, env *Environment) (Object, error) {
	env.Push(extendFunctionFrame(fn, args, env))
	defer env.Pop()

	return Eval(fn.Body, env)
}

// extendFunctionFrame builds a call frame in three layers, each overriding
// the one before: the caller's frame, the frame captured at definition,
// then the parameters. Captured bindings therefore shadow the caller's; the
// caller's frame only supplies names the closure never saw, such as the
// function's own name when it calls itself.
func extendFunctionFrame(fn *Function, args []Object, env *Environment) map[string]Object {
	frame := env.Snapshot()
	for name, val := range fn.Captured {
		frame[name] = val
	}
	for i, param := range fn.Params {
		frame[param] = args[i]
	}
	return frame
}

func newError(node ast.Node, code string, data map[string]any) *oerrors.OdysseyError {
	line, column := node.Pos()
	return oerrors.NewWithPosition(code, line, column, data)
}

// positioned attaches node's position to err unless it already has one.
func positioned(err error, node ast.Node) error {
	oe, ok := err.(*oerrors.OdysseyError)
	if !ok || oe.Line > 0 {
		return err
	}
	line, column := node.Pos()
	return oe.WithPosition(line, column)
}
