// This file converts between the document's cty value tree and native Go
// values. The native form is what the JSON and YAML encoders consume, and
// what a YAML decoder hands back.

package configstore

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ctyToNative recursively converts a cty.Value to its closest Go counterpart:
// string, float64 or int64, bool, map[string]any, []any, or nil.
func ctyToNative(v cty.Value) (any, error) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		// Prefer an integer representation when the number is whole, so
		// "nodes": 1 round-trips as 1 rather than 1.0.
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int64()
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, fmt.Errorf("could not convert cty.Bool: %w", err)
		}
		return b, nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nv)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			kv, ev := it.Element()
			key := kv.AsString()
			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key, err)
			}
			m[key] = nv
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported config value type %s", ty.FriendlyName())
	}
}

// NativeValue converts a document value to its closest Go counterpart:
// string, int64 or float64, bool, map[string]any, []any, or nil. Callers
// that print or re-encode values use this rather than working with cty
// directly.
func NativeValue(v cty.Value) (any, error) {
	return ctyToNative(v)
}

// ParseScalar interprets a command-line literal. Unquoted true/false become
// booleans, numerics become numbers, everything else stays a string.
func ParseScalar(s string) cty.Value {
	switch s {
	case "true":
		return cty.True
	case "false":
		return cty.False
	case "null":
		return cty.NullVal(cty.DynamicPseudoType)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return cty.NumberIntVal(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return cty.NumberFloatVal(f)
	}
	return cty.StringVal(s)
}

// nativeToCty is the inverse of ctyToNative. It accepts the value shapes
// produced by encoding/json and yaml.v3 decoding into interface{}.
func nativeToCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case uint64:
		return cty.NumberUIntVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(t))
		for i, e := range t {
			ev, err := nativeToCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("at index %d: %w", i, err)
			}
			elems = append(elems, ev)
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(t))
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev, err := nativeToCty(t[k])
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute %q: %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported native value type %T", v)
	}
}

// valueMap copies a mapping value's attributes into a fresh mutable map.
func valueMap(v cty.Value) map[string]cty.Value {
	m := make(map[string]cty.Value)
	if v.LengthInt() == 0 {
		return m
	}
	it := v.ElementIterator()
	for it.Next() {
		kv, ev := it.Element()
		m[kv.AsString()] = ev
	}
	return m
}

// isMapping reports whether v is a string-keyed mapping node of the tree.
func isMapping(v cty.Value) bool {
	if v == cty.NilVal || v.IsNull() {
		return false
	}
	ty := v.Type()
	return ty.IsObjectType() || ty.IsMapType()
}
