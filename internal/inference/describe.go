package inference

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders an asking price in US dollars with thousands
// separators, dropping cents on whole amounts.
func FormatPrice(price float64) string {
	if price == math.Trunc(price) {
		return pricePrinter.Sprintf("$%.0f", price)
	}
	return pricePrinter.Sprintf("$%.2f", price)
}

// Describe builds the two-paragraph listing description.
func Describe(metaDescription string, category Category, techStack, monetization []string, price float64) string {
	var first string
	if d := strings.TrimSpace(metaDescription); d != "" {
		first = fmt.Sprintf("%s This established %s is now available for acquisition at %s.",
			withPeriod(d), category.Label(), FormatPrice(price))
	} else {
		first = fmt.Sprintf("An established %s built with %s, now available for acquisition at %s.",
			category.Label(), joinList(top(techStack, 3)), FormatPrice(price))
	}

	second := fmt.Sprintf("The site currently earns revenue through %s. "+
		"The sale includes all site assets, the domain name and the complete codebase, "+
		"ready for a smooth handover to the new owner.",
		strings.ToLower(joinList(top(monetization, 2))))

	return first + "\n\n" + second
}

func top(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// joinList renders "a", "a and b" or "a, b and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func withPeriod(s string) string {
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
