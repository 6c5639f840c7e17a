package hclsuite

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// parameters converts a `parameters` list into plain Go values: strings,
// bools, int64 for whole numbers and float64 otherwise.
func parameters(v cty.Value) ([]any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() || !(v.Type().IsListType() || v.Type().IsTupleType()) {
		return nil, fmt.Errorf("parameters must be a list, got %s", v.Type().FriendlyName())
	}

	var out []any
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		p, err := scalar(elem)
		if err != nil {
			return nil, fmt.Errorf("parameters: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func scalar(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Bool:
		return v.True(), nil
	case cty.Number:
		if bf := v.AsBigFloat(); bf.IsInt() {
			var i int64
			if err := gocty.FromCtyValue(v, &i); err == nil {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", v.Type().FriendlyName())
	}
}
