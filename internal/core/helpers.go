package core

import (
	"fmt"
	"strconv"
	"strings"
)

// toDBColumnName derives a database column name from a field name.
func toDBColumnName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// ParseBinding parses "TABLE:SHAPE", e.g. "1:transaction".
func ParseBinding(s string) (Binding, error) {
	idx, key, ok := strings.Cut(s, ":")
	if !ok || key == "" {
		return Binding{}, fmt.Errorf("invalid binding %q: want TABLE:SHAPE", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil || n < 0 {
		return Binding{}, fmt.Errorf("invalid binding %q: table must be a non-negative integer", s)
	}
	return Binding{Table: n, Shape: strings.TrimSpace(key)}, nil
}

// ParseBindings parses every binding in order.
func ParseBindings(values []string) ([]Binding, error) {
	out := make([]Binding, 0, len(values))
	for _, v := range values {
		b, err := ParseBinding(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
