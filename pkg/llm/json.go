package llm

import (
	"encoding/json"
	"strings"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
)

// parseAnalysis extracts the JSON object from a raw model response that
// may be wrapped in markdown fences or surrounding prose, and decodes it.
func parseAnalysis(response string) (*Analysis, error) {
	jsonStr, ok := extractJSONObject(response)
	if !ok {
		return nil, apperrors.New(apperrors.KindExternalModelMalformedResponse, "model response contains no JSON object")
	}

	var a Analysis
	if err := json.Unmarshal([]byte(jsonStr), &a); err != nil {
		return nil, apperrors.Wrap(apperrors.KindExternalModelMalformedResponse, "cannot decode model response", err)
	}
	return &a, nil
}

// extractJSONObject finds the first balanced top-level JSON object in s,
// tracking string literals and escapes so braces inside strings do not
// confuse the depth count.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
