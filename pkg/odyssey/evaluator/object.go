package evaluator

import (
	"slices"
	"strconv"
	"strings"

	"github.com/sambeau/odyssey/pkg/odyssey/ast"
	oerrors "github.com/sambeau/odyssey/pkg/odyssey/errors"
)

// ObjectType represents the type of objects
type ObjectType string

const (
	INTEGER_OBJ    = "INTEGER"
	BOOLEAN_OBJ    = "BOOLEAN"
	STRING_OBJ     = "STRING"
	COLLECTION_OBJ = "COLLECTION"
	HASH_OBJ       = "HASH"
	FUNCTION_OBJ   = "FUNCTION"
	NULL_OBJ       = "NULL"
)

// Object represents all values in Odyssey. Inspect returns the display form
// of the value.
//
// Collections and hashes are reference values: every binding that holds one
// holds the same pointer, so a mutation through one alias is seen through all
// of them, across frame copies and closure snapshots. Integers, strings,
// booleans and functions are never mutated after creation.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents integer objects
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

func (i *Integer) Plus(other *Integer) *Integer  { return &Integer{Value: i.Value + other.Value} }
func (i *Integer) Minus(other *Integer) *Integer { return &Integer{Value: i.Value - other.Value} }
func (i *Integer) Times(other *Integer) *Integer { return &Integer{Value: i.Value * other.Value} }
func (i *Integer) Negate() *Integer              { return &Integer{Value: -i.Value} }

// Div truncates toward zero: 7/2 is 3 and -7/2 is -3.
func (i *Integer) Div(other *Integer) (*Integer, error) {
	if other.Value == 0 {
		return nil, oerrors.New("OP-0001", nil)
	}
	return &Integer{Value: i.Value / other.Value}, nil
}

// Pow raises i to a non-negative power. Overflow wraps like the other
// integer operators.
func (i *Integer) Pow(other *Integer) (*Integer, error) {
	exp := other.Value
	if exp < 0 {
		return nil, oerrors.New("OP-0002", map[string]any{"Exponent": exp})
	}

	base, result := i.Value, int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return &Integer{Value: result}, nil
}

func (i *Integer) IsLessThan(other *Integer) *Boolean    { return nativeBoolToBooleanObject(i.Value < other.Value) }
func (i *Integer) IsEqualTo(other *Integer) *Boolean     { return nativeBoolToBooleanObject(i.Value == other.Value) }
func (i *Integer) IsGreaterThan(other *Integer) *Boolean { return nativeBoolToBooleanObject(i.Value > other.Value) }

// Boolean represents boolean objects. Only comparisons produce them.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "True"
	}
	return "False"
}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// String represents string objects
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return `"` + s.Value + `"` }

// Plus appends the text form of other: a string contributes its raw text,
// anything else its display form. Null cannot be appended.
func (s *String) Plus(other Object) (*String, error) {
	text, err := AsText(other)
	if err != nil {
		return nil, err
	}
	return &String{Value: s.Value + text}, nil
}

// AsText returns the text a value contributes to string concatenation.
func AsText(obj Object) (string, error) {
	switch o := obj.(type) {
	case *String:
		return o.Value, nil
	case *Null:
		return "", oerrors.New("TYPE-0007", map[string]any{"Kind": KindOf(obj)})
	default:
		return obj.Inspect(), nil
	}
}

// Collection is a mutable, index-addressable sequence.
type Collection struct {
	Elements []Object
}

func (c *Collection) Type() ObjectType { return COLLECTION_OBJ }
func (c *Collection) Inspect() string {
	parts := make([]string, len(c.Elements))
	for i, e := range c.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// At returns the element at index, or NULL outside [0, len).
func (c *Collection) At(index int64) Object {
	if index < 0 || index >= int64(len(c.Elements)) {
		return NULL
	}
	return c.Elements[index]
}

// MaxGrowth is how far past the end of a collection a write may land.
const MaxGrowth = 1 << 16

// Put stores value at index and returns it. Writing past the end grows the
// collection, filling any gap with NULL. Negative indexes and writes more
// than MaxGrowth past the end are rejected.
func (c *Collection) Put(value Object, index int64) (Object, error) {
	if index < 0 {
		return nil, oerrors.New("INDEX-0002", map[string]any{"Index": index})
	}
	length := int64(len(c.Elements))
	if index-length > MaxGrowth {
		return nil, oerrors.New("INDEX-0003", map[string]any{"Index": index, "Len": length, "Max": MaxGrowth})
	}
	if index >= length {
		c.Elements = append(c.Elements, slices.Repeat([]Object{NULL}, int(index-length+1))...)
	}
	c.Elements[index] = value
	return value, nil
}

// Hash maps string keys to values, remembering first-insertion order.
type Hash struct {
	Keys  []string
	Pairs map[string]Object
}

// NewHash returns an empty hash.
func NewHash() *Hash {
	return &Hash{Pairs: make(map[string]Object)}
}

func (h *Hash) Type() ObjectType { return HASH_OBJ }
func (h *Hash) Inspect() string {
	parts := make([]string, len(h.Keys))
	for i, k := range h.Keys {
		parts[i] = k + ":" + h.Pairs[k].Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the value stored under key, or NULL.
func (h *Hash) Get(key string) Object {
	if v, ok := h.Pairs[key]; ok {
		return v
	}
	return NULL
}

// Set inserts or overwrites key. An overwritten key keeps its position.
func (h *Hash) Set(key string, value Object) Object {
	if _, ok := h.Pairs[key]; !ok {
		h.Keys = append(h.Keys, key)
	}
	h.Pairs[key] = value
	return value
}

// Function is a closure: parameter names, the unevaluated body and the frame
// captured when the function was defined. Captured is never modified.
type Function struct {
	Params   []string
	Body     ast.Expression
	Captured map[string]Object
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	return "(" + strings.Join(f.Params, ", ") + ")=>{" + ast.BodyString(f.Body) + "}"
}

// Null is produced by missing or out-of-range lookups. It has no literal.
type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "(null)" }

var NULL = &Null{}

// KindOf returns the lowercase kind name used in error messages.
func KindOf(obj Object) string {
	if obj == nil {
		return "nothing"
	}
	return strings.ToLower(string(obj.Type()))
}
