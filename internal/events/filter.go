package events

import (
	"fmt"
	"strings"
)

// Filter selects change events by table, change type and an optional column equality.
type Filter struct {
	Table  Table
	Event  ChangeType
	Column string
	Value  string
}

// Matches reports whether event satisfies the filter. An empty Table matches every table
// and an empty or "*" Event matches every change type.
func (f Filter) Matches(event ChangeEvent) bool {
	if f.Table != "" && f.Table != event.Table {
		return false
	}
	if f.Event != "" && f.Event != ChangeAny && f.Event != event.Type {
		return false
	}
	if f.Column == "" {
		return true
	}
	if f.Column == "id" {
		return event.Key == f.Value
	}
	value, ok := event.Columns[f.Column]
	return ok && value == f.Value
}

// ParseFilter parses a "column=eq.value" expression. Only equality is supported.
func ParseFilter(expr string) (column, value string, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", "", nil
	}
	column, rest, ok := strings.Cut(expr, "=")
	if !ok || column == "" {
		return "", "", fmt.Errorf("invalid filter %q", expr)
	}
	value, ok = strings.CutPrefix(rest, "eq.")
	if !ok || value == "" {
		return "", "", fmt.Errorf("unsupported filter operator in %q", expr)
	}
	return column, value, nil
}

// String renders the filter back in the query syntax accepted by the realtime endpoint.
func (f Filter) String() string {
	if f.Column == "" {
		return ""
	}
	return f.Column + "=eq." + f.Value
}
