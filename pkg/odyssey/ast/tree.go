package ast

// Tree returns a plain-data view of a node: maps, slices, strings and
// integers only. It is what the CLI prints for --tree and what tests compare
// parse results against. 12+4 becomes
//
//	{"left": {"value": 12}, "op": "+", "right": {"value": 4}}
func Tree(node Node) any {
	switch n := node.(type) {
	case *Program:
		return treeList(n.Statements)
	case *Identifier:
		return map[string]any{"value": n.Value}
	case *IntegerLiteral:
		return map[string]any{"value": n.Value}
	case *StringLiteral:
		return map[string]any{"text": n.Value}
	case *ArrayLiteral:
		return map[string]any{"elements": treeList(n.Elements)}
	case *ArrayLookup:
		return map[string]any{"array": Tree(n.Array), "index": Tree(n.Index)}
	case *HashLiteral:
		pairs := make([]any, len(n.Pairs))
		for i, kv := range n.Pairs {
			pairs[i] = Tree(kv)
		}
		return map[string]any{"pairs": pairs}
	case *KeyValue:
		return map[string]any{"key": n.Key, "value": Tree(n.Value)}
	case *DotAccess:
		return map[string]any{"object": Tree(n.Object), "field": Tree(n.Field)}
	case *BinaryExpression:
		return map[string]any{"op": n.Operator, "left": Tree(n.Left), "right": Tree(n.Right)}
	case *ConditionalExpression:
		return map[string]any{
			"condition": Tree(n.Condition),
			"left":      Tree(n.Consequence),
			"right":     Tree(n.Alternative),
		}
	case *NegatedExpression:
		return map[string]any{"val": Tree(n.Operand)}
	case *ParenthesizedExpression:
		return map[string]any{"body": Tree(n.Inner)}
	case *AssignmentExpression:
		return map[string]any{"id": Tree(n.Target), "e": Tree(n.Value)}
	case *DefunExpression:
		params := make([]any, len(n.Params))
		for i, p := range n.Params {
			params[i] = p
		}
		return map[string]any{"params": params, "e": Tree(n.Body)}
	case *FuncallExpression:
		return map[string]any{"fn": Tree(n.Function), "args": treeList(n.Arguments)}
	case *BlockExpression:
		return map[string]any{"statements": treeList(n.Statements)}
	}
	return nil
}

func treeList(exprs []Expression) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = Tree(e)
	}
	return out
}
