package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "trims lowercases and dedupes in order",
			input:    []string{" AI_Processing ", "data_collection", "ai_processing"},
			expected: []string{"ai_processing", "data_collection"},
		},
		{
			name:     "drops blanks",
			input:    []string{"", "  ", "third_party_sharing"},
			expected: []string{"third_party_sharing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTokens(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList("   "))
	assert.Equal(t, []string{"data_collection", "ai_processing"}, SplitList("data_collection, AI_PROCESSING,,"))
}
