// Package schema normalizes backend-native column names and type strings
// into the canonical vocabulary shared by every connector.
package schema

import (
	"strings"
	"unicode"
)

// Canonical data types. Every backend-native type string maps into one of
// these five.
const (
	TypeInteger = "INTEGER"
	TypeFloat   = "FLOAT"
	TypeText    = "TEXT"
	TypeDate    = "DATE"
	TypeBoolean = "BOOLEAN"
)

// Column describes one normalized column of a table or collection.
type Column struct {
	Name string `json:"column_name"`
	Type string `json:"data_type"`
}

// Schema maps a table or collection name to its ordered columns.
type Schema map[string][]Column

// Tables returns the table names in the schema. Order is not guaranteed.
func (s Schema) Tables() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// NormalizeColumnName rewrites a raw column name so it matches
// ^[a-z0-9_]+$: every character outside [A-Za-z0-9_] becomes an
// underscore, a leading digit gains a col_ prefix, and the result is
// lower-cased. The transform is idempotent.
func NormalizeColumnName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte('_')
		}
	}
	safe := b.String()
	if safe == "" {
		return "_"
	}
	if safe[0] >= '0' && safe[0] <= '9' {
		safe = "col_" + safe
	}
	return safe
}

// NormalizeType maps a backend-native type string to the canonical
// vocabulary. Matching is case-insensitive substring containment and the
// first match wins: int, then float/double/numeric/real, then date/time,
// then bool. Everything else is TEXT.
func NormalizeType(native string) string {
	t := strings.ToLower(native)
	switch {
	case strings.Contains(t, "int"):
		return TypeInteger
	case strings.Contains(t, "float"), strings.Contains(t, "double"),
		strings.Contains(t, "numeric"), strings.Contains(t, "real"):
		return TypeFloat
	case strings.Contains(t, "date"), strings.Contains(t, "time"):
		return TypeDate
	case strings.Contains(t, "bool"):
		return TypeBoolean
	default:
		return TypeText
	}
}
