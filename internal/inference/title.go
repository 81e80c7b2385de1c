package inference

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLen  = 60
	DefaultTitle = "Established Website"
	saleSuffix   = " for Sale"
)

// Separators that introduce a trailing brand segment. A bare hyphen only
// counts when spaced, so "E-Commerce Tips" is left alone.
var titleSeparators = []string{"|", "—", "–", " - ", "·", "»"}

// CleanTitle turns a raw page title into a listing title of at most
// MaxTitleLen runes that mentions the site is for sale.
func CleanTitle(raw string) string {
	raw = strings.TrimSpace(raw)

	title := stripBrand(raw)
	if title == "" {
		title = raw
	}
	if title == "" {
		title = DefaultTitle
	}

	if strings.Contains(strings.ToLower(title), "for sale") {
		return truncate(title, MaxTitleLen)
	}
	return truncate(title, MaxTitleLen-utf8.RuneCountInString(saleSuffix)) + saleSuffix
}

func stripBrand(title string) string {
	cut := -1
	for _, sep := range titleSeparators {
		if i := strings.LastIndex(title, sep); i > cut {
			cut = i
		}
	}
	if cut < 0 {
		return title
	}
	return strings.TrimSpace(title[:cut])
}

// truncate shortens s to max runes, ending in an ellipsis when cut.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
