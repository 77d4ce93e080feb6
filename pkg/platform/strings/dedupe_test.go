package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeFold(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "only blanks", input: []string{"", "  "}, expected: []string{}},
		{
			name:     "trims whitespace",
			input:    []string{"  a@demo.com ", "b@demo.com  "},
			expected: []string{"a@demo.com", "b@demo.com"},
		},
		{
			name:     "case-insensitive duplicates keep first spelling",
			input:    []string{" Juan@demo.com", "juan@DEMO.com", "", "ana@demo.com"},
			expected: []string{"Juan@demo.com", "ana@demo.com"},
		},
		{
			name:     "order preserved",
			input:    []string{"c", "a", "b", "A"},
			expected: []string{"c", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeFold(tt.input))
		})
	}
}
