package schema

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind identifies the runtime type carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

// String returns the string representation of a kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindList:
		return "array"
	case KindMap:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged variant holding one property value. Validation works on
// Values instead of raw interface{} bags so type checks are exhaustive.
type Value struct {
	kind Kind
	str  string
	i64  int64
	f64  float64
	b    bool
	list []Value
	m    map[string]Value
}

// Typed constructors
func NullValue() Value             { return Value{kind: KindNull} }
func StringValue(s string) Value   { return Value{kind: KindString, str: s} }
func IntValue(i int64) Value       { return Value{kind: KindInt, i64: i} }
func FloatValue(f float64) Value   { return Value{kind: KindFloat, f64: f} }
func BoolValue(b bool) Value       { return Value{kind: KindBool, b: b} }
func ListValue(vs []Value) Value   { return Value{kind: KindList, list: vs} }
func MapValue(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// FromAny converts a decoded YAML/JSON value into a Value. Unrecognized types
// are carried as their string form so callers never see a panic.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case Value:
		return t
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case uint:
		return IntValue(int64(t))
	case uint64:
		return IntValue(int64(t))
	case float32:
		return FloatValue(float64(t))
	case float64:
		return FloatValue(t)
	case time.Time:
		return StringValue(t.Format(time.RFC3339))
	case []any:
		list := make([]Value, len(t))
		for i, el := range t {
			list[i] = FromAny(el)
		}
		return ListValue(list)
	case []string:
		list := make([]Value, len(t))
		for i, el := range t {
			list[i] = StringValue(el)
		}
		return ListValue(list)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, el := range t {
			m[k] = FromAny(el)
		}
		return MapValue(m)
	default:
		return StringValue(fmt.Sprint(v))
	}
}

// Kind returns the kind tag of the value
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null variant
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", fmt.Errorf("value is not a string (got %s)", v.kind)
	}
	return v.str, nil
}

// AsInt returns the integer payload
func (v Value) AsInt() (int64, error) {
	if v.kind != KindInt {
		return 0, fmt.Errorf("value is not an integer (got %s)", v.kind)
	}
	return v.i64, nil
}

// AsFloat returns the numeric payload, widening integers
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f64, nil
	case KindInt:
		return float64(v.i64), nil
	default:
		return 0, fmt.Errorf("value is not numeric (got %s)", v.kind)
	}
}

// AsBool returns the boolean payload
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("value is not a boolean (got %s)", v.kind)
	}
	return v.b, nil
}

// AsList returns the list payload
func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, fmt.Errorf("value is not an array (got %s)", v.kind)
	}
	return v.list, nil
}

// AsMap returns the map payload
func (v Value) AsMap() (map[string]Value, error) {
	if v.kind != KindMap {
		return nil, fmt.Errorf("value is not an object (got %s)", v.kind)
	}
	return v.m, nil
}

// Equal reports deep value equality. Kinds must match exactly; an integer 1
// and a float 1.0 are not equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindInt:
		return v.i64 == other.i64
	case KindFloat:
		return v.f64 == other.f64
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, el := range v.m {
			ov, ok := other.m[k]
			if !ok || !el.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value for error messages and logs
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindInt:
		return fmt.Sprintf("%d", v.i64)
	case KindFloat:
		return fmt.Sprintf("%g", v.f64)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, el := range v.list {
			parts[i] = el.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.m[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "unknown"
	}
}
