package inference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$5,000", FormatPrice(5000))
	assert.Equal(t, "$1,250,000", FormatPrice(1250000))
	assert.Equal(t, "$999", FormatPrice(999))
	assert.Equal(t, "$1,234.50", FormatPrice(1234.5))
}

func TestFormatPrice_BeyondInt64(t *testing.T) {
	assert.Equal(t, "$10,000,000,000,000,000,000", FormatPrice(1e19))

	huge := FormatPrice(1e300)
	assert.True(t, strings.HasPrefix(huge, "$1,000,"), huge)
	assert.NotContains(t, huge, "-")
}

func TestDescribe_WithMetaDescription(t *testing.T) {
	got := Describe("Handmade candles", CategoryEcommerce, []string{"Shopify"}, []string{"Product Sales"}, 5000)

	paragraphs := strings.Split(got, "\n\n")
	assert.Len(t, paragraphs, 2)
	assert.Equal(t, "Handmade candles. This established e-commerce store is now available for acquisition at $5,000.", paragraphs[0])
	assert.Contains(t, paragraphs[1], "earns revenue through product sales.")
	assert.Contains(t, paragraphs[1], "domain name and the complete codebase")
}

func TestDescribe_Synthesized(t *testing.T) {
	got := Describe("", CategorySaaS,
		[]string{"Next.js", "React", "Node.js", "Postgres"},
		[]string{"Subscriptions", "Affiliate Marketing", "Sponsored Content"}, 120000)

	paragraphs := strings.Split(got, "\n\n")
	assert.Equal(t, "An established SaaS business built with Next.js, React and Node.js, now available for acquisition at $120,000.", paragraphs[0])
	assert.Contains(t, paragraphs[1], "through subscriptions and affiliate marketing.")
	assert.NotContains(t, got, "Sponsored")
}

func TestDescribe_KeepsTerminalPunctuation(t *testing.T) {
	got := Describe("Best deals online!", CategoryContentSite, nil, []string{"Display Ads"}, 10)
	assert.True(t, strings.HasPrefix(got, "Best deals online! This established"))
}
