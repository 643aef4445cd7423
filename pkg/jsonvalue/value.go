package jsonvalue

import "fmt"

// Kind classifies a JSON value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "boolean",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

// String returns the JSON type name ("null", "boolean", "number", "string",
// "array" or "object").
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsComposite reports whether values of this kind hold other values.
func (k Kind) IsComposite() bool { return k == KindArray || k == KindObject }

// ParseKind is the inverse of [Kind.String].
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindNull, fmt.Errorf("unknown kind %q", s)
}

// Value is a JSON value. The set of implementations is closed: Null, Bool,
// Number, String, Array and *Object.
type Value interface {
	Kind() Kind
	MarshalJSON() ([]byte, error)
	sealed()
}

type (
	// Null is the JSON null literal.
	Null struct{}
	// Bool is a JSON boolean.
	Bool bool
	// Number is a JSON number.
	Number float64
	// String is a JSON string.
	String string
	// Array is an ordered list of values.
	Array []Value
)

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }

func (Null) sealed()   {}
func (Bool) sealed()   {}
func (Number) sealed() {}
func (String) sealed() {}
func (Array) sealed()  {}

// Classify returns the kind of v. A nil Value classifies as null.
func Classify(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// IsScalar reports whether v is neither an array nor an object.
func IsScalar(v Value) bool { return !Classify(v).IsComposite() }

// Len returns the number of elements of an array or members of an object,
// and 0 for scalars.
func Len(v Value) int {
	switch t := v.(type) {
	case Array:
		return len(t)
	case *Object:
		return t.Len()
	default:
		return 0
	}
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Array:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case *Object:
		out := NewObject()
		for _, m := range t.members {
			out.Set(m.Key, Clone(m.Value))
		}
		return out
	default:
		return v
	}
}
