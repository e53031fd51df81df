// Package value adapts go-cty to the dynamic values that flow through the
// registry: constant values, include results, routine arguments and the
// variables of a locals scope.
package value

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Unset is returned for lookups that found no binding. It is distinct from
// cty.NullVal and from every falsy value.
var Unset = cty.NilVal

// Include results.
var (
	True  = cty.True
	False = cty.False
)

// IsUnset reports whether v is the Unset sentinel.
func IsUnset(v cty.Value) bool {
	return v.Type() == cty.NilType
}

// FromGo converts a native Go value into its implied cty.Value.
func FromGo(v any) (cty.Value, error) {
	if cv, ok := v.(cty.Value); ok {
		return cv, nil
	}
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("could not imply cty type from Go type %T: %w", v, err)
	}
	val, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("could not convert Go value of type %T: %w", v, err)
	}
	return val, nil
}

// MustFromGo is FromGo for values known to be convertible.
func MustFromGo(v any) cty.Value {
	val, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return val
}

// Truthy applies the scripting language's boolean conversion to the value
// kinds cty can represent.
func Truthy(v cty.Value) bool {
	if IsUnset(v) || v.IsNull() || !v.IsKnown() {
		return false
	}
	switch {
	case v.Type() == cty.Bool:
		return v.True()
	case v.Type() == cty.Number:
		return !v.Equals(cty.Zero).True()
	case v.Type() == cty.String:
		s := v.AsString()
		return s != "" && s != "0"
	case v.CanIterateElements():
		return v.LengthInt() > 0
	}
	return true
}

// String renders a value the way an echo statement would.
func String(v cty.Value) string {
	if IsUnset(v) || v.IsNull() {
		return ""
	}
	if !v.IsKnown() {
		return "(unknown)"
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case cty.Bool:
		if v.True() {
			return "1"
		}
		return ""
	}
	return v.GoString()
}
