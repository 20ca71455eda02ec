// Package sqlsafety validates model-generated SQL before execution. The
// generating model is untrusted input: it can hallucinate write
// statements, stacked queries, or tables outside the connected schema.
// This package is the last gate before the query reaches a live
// connection, and it fails closed.
package sqlsafety

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
)

// DefaultRowLimit caps result size when the generated query carries no
// LIMIT clause of its own.
const DefaultRowLimit = 1000

// FallbackRowLimit is used by the safe fallback query substituted for
// out-of-scope model output.
const FallbackRowLimit = 100

// forbiddenPatterns match write/DDL keywords, statement separators, and
// comment markers. Any hit rejects the query outright.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\binsert\b`),
	regexp.MustCompile(`\bupdate\b`),
	regexp.MustCompile(`\bdelete\b`),
	regexp.MustCompile(`\bdrop\b`),
	regexp.MustCompile(`\balter\b`),
	regexp.MustCompile(`\btruncate\b`),
	regexp.MustCompile(`\bcreate\b`),
	regexp.MustCompile(`\bgrant\b`),
	regexp.MustCompile(`\brevoke\b`),
	regexp.MustCompile(`;`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`/\*`),
}

var (
	fromPattern  = regexp.MustCompile("\\bfrom\\s+[`\"]?([a-z0-9_]+)[`\"]?")
	joinPattern  = regexp.MustCompile("\\bjoin\\s+[`\"]?([a-z0-9_]+)[`\"]?")
	limitPattern = regexp.MustCompile(`(?i)\blimit\b`)
)

// IsSelectOnly reports whether the query begins with select after
// trimming, case-insensitively.
func IsSelectOnly(sql string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(sql)), "select")
}

// ContainsForbidden reports whether the query carries any write/DDL
// keyword, semicolon, or comment marker. An empty query counts as
// forbidden.
func ContainsForbidden(sql string) bool {
	if strings.TrimSpace(sql) == "" {
		return true
	}
	low := strings.ToLower(sql)
	for _, pat := range forbiddenPatterns {
		if pat.MatchString(low) {
			return true
		}
	}
	return false
}

// ExtractTables returns the distinct table names referenced after FROM and
// JOIN. The extraction is deliberately crude: it exists to compare against
// a known schema, not to parse arbitrary SQL.
func ExtractTables(sql string) []string {
	low := strings.ToLower(sql)
	seen := make(map[string]struct{})
	var tables []string
	for _, pat := range []*regexp.Regexp{fromPattern, joinPattern} {
		for _, m := range pat.FindAllStringSubmatch(low, -1) {
			name := m[1]
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				tables = append(tables, name)
			}
		}
	}
	return tables
}

// ReferencesOnly reports whether every table the query mentions is in the
// allowed set. A query mentioning no tables at all is treated as
// out-of-scope, conservatively.
func ReferencesOnly(sql string, allowed []string) bool {
	found := ExtractTables(sql)
	if len(found) == 0 {
		return false
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range found {
		if _, ok := allowedSet[t]; !ok {
			return false
		}
	}
	return true
}

// EnforceLimit appends a LIMIT clause when the query has none. A query
// that already carries one is returned unchanged.
func EnforceLimit(sql string, rowLimit int) string {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}
	if limitPattern.MatchString(sql) {
		return sql
	}
	return strings.TrimRight(sql, " \t\n\r") + fmt.Sprintf(" LIMIT %d", rowLimit)
}

// FallbackQuery builds the safe default substituted when model output
// fails validation: a bounded scan of the first known table.
func FallbackQuery(table string) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, FallbackRowLimit)
}

// CheckLiteralInjection runs libinjection over every quoted string
// literal in the query. A model smuggling stacked statements inside a
// literal slips past the keyword gate; the fingerprint check catches it.
func CheckLiteralInjection(sql string) error {
	for _, lit := range stringLiterals(sql) {
		if isSQLi, fingerprint := libinjection.IsSQLi(lit); isSQLi {
			return apperrors.Newf(apperrors.KindUnsafeQueryRejected,
				"string literal matches injection fingerprint %s", fingerprint)
		}
	}
	return nil
}

// Validate runs the full gate over a candidate query against the tables
// known from the live schema. It returns the query to execute: either the
// candidate with a limit enforced, or the safe fallback when the candidate
// references unknown tables. Write statements and comment smuggling are
// rejected, not repaired.
func Validate(candidate string, allowedTables []string, rowLimit int) (string, error) {
	if !IsSelectOnly(candidate) || ContainsForbidden(candidate) {
		return "", apperrors.New(apperrors.KindUnsafeQueryRejected,
			"generated query failed read-only validation")
	}
	if err := CheckLiteralInjection(candidate); err != nil {
		return "", err
	}
	if len(allowedTables) > 0 && !ReferencesOnly(candidate, allowedTables) {
		return FallbackQuery(allowedTables[0]), nil
	}
	return EnforceLimit(candidate, rowLimit), nil
}

// stringLiterals extracts the contents of single-quoted literals,
// honoring the SQL doubled-quote escape.
func stringLiterals(sql string) []string {
	var literals []string
	var current strings.Builder
	inString := false

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if !inString {
			if c == '\'' {
				inString = true
				current.Reset()
			}
			continue
		}
		if c == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				current.WriteRune('\'')
				i++
				continue
			}
			inString = false
			literals = append(literals, current.String())
			continue
		}
		current.WriteRune(c)
	}
	return literals
}
