package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindList
)

// Value is a tagged variant for supplied variable values:
// string, number, boolean or list of strings. The zero value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []string
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ListValue wraps a list of strings.
func ListValue(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String renders the value for placeholder substitution.
// Numbers use the shortest decimal form, lists join with ", ".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// AsNumber attempts to interpret the value as a number.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// AsBool attempts to interpret the value as a boolean. The literal
// strings "true" and "false" are accepted.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindString:
		switch v.str {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// AsList attempts to interpret the value as a list of strings. A plain
// string is accepted so callers may comma-split upstream.
func (v Value) AsList() ([]string, bool) {
	switch v.kind {
	case KindList:
		return v.list, true
	case KindString:
		return []string{v.str}, true
	default:
		return nil, false
	}
}

// MarshalJSON encodes the underlying variant directly.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any scalar or array-of-scalars JSON value.
// Array elements are coerced to their string form.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromInterface converts a decoded JSON value into a Value.
func FromInterface(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return StringValue(t), nil
	case float64:
		return NumberValue(t), nil
	case bool:
		return BoolValue(t), nil
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, item := range t {
			switch e := item.(type) {
			case string:
				items = append(items, e)
			case float64:
				items = append(items, strconv.FormatFloat(e, 'f', -1, 64))
			case bool:
				items = append(items, strconv.FormatBool(e))
			default:
				return Value{}, fmt.Errorf("unsupported array element type %T", item)
			}
		}
		return Value{kind: KindList, list: items}, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// ValuesFromInterfaceMap converts a generic JSON object into variable
// values, skipping entries that cannot be represented.
func ValuesFromInterfaceMap(raw map[string]interface{}) map[string]Value {
	values := make(map[string]Value, len(raw))
	for name, item := range raw {
		v, err := FromInterface(item)
		if err != nil {
			continue
		}
		values[name] = v
	}
	return values
}
