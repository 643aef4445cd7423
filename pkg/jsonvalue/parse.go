package jsonvalue

import (
	"bytes"
	"errors"
	"io"

	"github.com/tidwall/gjson"
)

var (
	// ErrEmptyInput is returned when the input holds nothing but whitespace.
	ErrEmptyInput = errors.New("input is empty or contains only whitespace")

	// ErrInvalidJSON is returned when the input is not a single well-formed
	// JSON value.
	ErrInvalidJSON = errors.New("invalid JSON format")
)

// Parse decodes a single JSON document. Object members keep document order;
// a repeated key keeps its first position and its last value.
func Parse(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// ParseString is Parse for string input.
func ParseString(s string) (Value, error) { return Parse([]byte(s)) }

// ParseReader reads r to the end and parses the result.
func ParseReader(r io.Reader) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// MustParse is like ParseString but panics on error.
// It is intended for tests and static fixtures.
func MustParse(s string) Value {
	v, err := ParseString(s)
	if err != nil {
		panic("jsonvalue: MustParse: " + err.Error())
	}
	return v
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null{}
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return String(r.Str)
	}
	if r.IsArray() {
		elems := r.Array()
		arr := make(Array, len(elems))
		for i, e := range elems {
			arr[i] = fromResult(e)
		}
		return arr
	}
	obj := NewObject()
	r.ForEach(func(key, value gjson.Result) bool {
		obj.Set(key.Str, fromResult(value))
		return true
	})
	return obj
}
