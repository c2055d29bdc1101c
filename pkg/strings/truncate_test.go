package strings

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long string truncated",
			input:    "hello world this is a long string",
			maxLen:   15,
			expected: "hello world ...",
		},
		{
			name:     "inner whitespace kept",
			input:    "ipv4   rutracker.org   : nfqws",
			maxLen:   50,
			expected: "ipv4   rutracker.org   : nfqws",
		},
		{
			name:     "unicode truncation safe",
			input:    "проверка стратегии",
			maxLen:   8,
			expected: "прове...",
		},
		{
			name:     "empty string",
			input:    "",
			maxLen:   10,
			expected: "",
		},
		{
			name:     "maxLen less than MinTruncateLen clamped to 4",
			input:    "hello",
			maxLen:   2,
			expected: "h...",
		},
		{
			name:     "negative maxLen clamped to MinTruncateLen",
			input:    "hello",
			maxLen:   -5,
			expected: "h...",
		},
		{
			name:     "short string with small maxLen unchanged",
			input:    "hi",
			maxLen:   3,
			expected: "hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Truncate(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestTruncate_RuneLength(t *testing.T) {
	result := Truncate("日本語テスト", 5)

	if result != "日本..." {
		t.Errorf("Expected %q but got %q", "日本...", result)
	}
	if !utf8.ValidString(result) {
		t.Errorf("Result %q is not valid UTF-8", result)
	}
	if n := utf8.RuneCountInString(result); n != 5 {
		t.Errorf("Expected 5 runes, got %d", n)
	}
}
