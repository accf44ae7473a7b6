package evaluator

import "github.com/sambeau/odyssey/pkg/odyssey/ast"

// PrintBuiltin is the reserved callee handled by the evaluator itself.
const PrintBuiltin = "print"

// Builtins lists the names the evaluator resolves before the environment.
var Builtins = []string{PrintBuiltin}

// evalPrint writes the display form of each argument, space separated, as
// one line to the environment's logger.
func evalPrint(node *ast.FuncallExpression, env *Environment) (Object, error) {
	args, err := evalExpressions(node.Arguments, env)
	if err != nil {
		return nil, err
	}

	values := make([]any, len(args))
	for i, arg := range args {
		values[i] = arg.Inspect()
	}
	env.Logger.LogLine(values...)

	return TRUE, nil
}
