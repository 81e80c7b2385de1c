package inference

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Acme Shop | Acme Inc", "Acme Shop for Sale"},
		{"Daily Recipes - Home Cooking - Tasty Co", "Daily Recipes - Home Cooking for Sale"},
		{"Budget Travel — Nomad Blog", "Budget Travel for Sale"},
		{"E-Commerce Tips", "E-Commerce Tips for Sale"},
		{"| Brand Only", "| Brand Only for Sale"},
		{"", "Established Website for Sale"},
		{"Niche Site For Sale | Flippa", "Niche Site For Sale"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanTitle(tt.raw), tt.raw)
	}
}

func TestCleanTitle_Length(t *testing.T) {
	raw := strings.Repeat("Very Long Title Words ", 10)
	got := CleanTitle(raw)

	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxTitleLen)
	assert.True(t, strings.HasSuffix(strings.ToLower(got), "for sale"))
	assert.Contains(t, got, "…")
}

func TestCleanTitle_LengthWithPhrase(t *testing.T) {
	raw := "For sale: " + strings.Repeat("ééé ", 30)
	got := CleanTitle(raw)

	assert.Equal(t, MaxTitleLen, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestCleanTitle_Property(t *testing.T) {
	inputs := []string{
		"a", "Short | B", "x — y — z", strings.Repeat("word ", 40), "Ünïcödé Tïtle | Bränd",
	}
	for _, in := range inputs {
		got := CleanTitle(in)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxTitleLen, in)
		assert.True(t, strings.HasSuffix(strings.ToLower(got), "for sale"), in)
	}
}
