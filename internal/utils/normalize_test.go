package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Carlos Silva", "carlos_silva"},
		{"accents stripped", "João Conceição", "joao_conceicao"},
		{"cedilla", "França", "franca"},
		{"extra whitespace", "  Ana   Beatriz  ", "ana_beatriz"},
		{"hyphenated", "Maria-José", "maria_jose"},
		{"symbols dropped", "O'Neill & Cia.", "oneill_cia"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestNormalizeNameLower(t *testing.T) {
	assert.Equal(t, "carlos silva", NormalizeNameLower("  Carlos   Silva "))
	assert.Equal(t, "", NormalizeNameLower("   "))
}

func TestTrimMax(t *testing.T) {
	assert.Equal(t, "abc", TrimMax("  abc  ", 10))
	assert.Equal(t, "abcde", TrimMax("abcdefgh", 5))
}
