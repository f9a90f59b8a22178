// Package strings provides string normalization helpers for request input.
package strings

import (
	"strings"
)

// NormalizeTokens trims and lowercases each value, drops empties and
// duplicates, and keeps first-seen order.
//
//	NormalizeTokens([]string{" AI_Processing ", "data_collection", "ai_processing", ""})
//	// []string{"ai_processing", "data_collection"}
func NormalizeTokens(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		token := strings.ToLower(strings.TrimSpace(v))
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}

// SplitList splits a comma-separated list and normalizes it with
// NormalizeTokens. Used for query strings like ?scopes=a,b.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeTokens(strings.Split(raw, ","))
}
