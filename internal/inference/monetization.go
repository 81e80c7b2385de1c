package inference

import "regexp"

const (
	MonetizationDisplayAds   = "Display Ads"
	MonetizationAffiliate    = "Affiliate Marketing"
	MonetizationSubscription = "Subscriptions"
	MonetizationSponsored    = "Sponsored Content"
	MonetizationDigital      = "Digital Products"
	MonetizationProductSales = "Product Sales"
	MonetizationNewsletter   = "Newsletter"
)

type monetizationRule struct {
	label   string
	pattern *regexp.Regexp
}

var monetizationRules = []monetizationRule{
	{MonetizationDisplayAds, regexp.MustCompile(`(?i)adsense|adsbygoogle|googlesyndication|doubleclick|mediavine|ezoic|adthrive|raptive|\bdisplay ads?\b`)},
	{MonetizationAffiliate, regexp.MustCompile(`(?i)affiliate|amazon associates|amzn\.to|shareasale|commission junction|\bcj\.com|impact\.com|partnerize|\bref=`)},
	{MonetizationSubscription, regexp.MustCompile(`(?i)subscriptions?|membership|premium plan|paid plan|per month|/mo\b|monthly plan|annual plan`)},
	{MonetizationSponsored, regexp.MustCompile(`(?i)sponsor(ed|ship|s)?\b|advertise with us|partner with us|media kit`)},
	{MonetizationDigital, regexp.MustCompile(`(?i)e-?books?|online course|courses|templates?|digital download|digital products?|gumroad|lemon ?squeezy`)},
	{MonetizationProductSales, regexp.MustCompile(`(?i)\b(shop|store|cart|checkout|buy now|add to cart)\b`)},
	{MonetizationNewsletter, regexp.MustCompile(`(?i)newsletter|substack|beehiiv|mailing list`)},
}

// Subscriptions and Newsletter describe the same recurring-reader revenue;
// only the first of the pair to match is reported.
var monetizationExclusive = map[string]string{
	MonetizationSubscription: MonetizationNewsletter,
	MonetizationNewsletter:   MonetizationSubscription,
}

// InferMonetization collects every revenue model whose keywords occur in
// blob, in rule order. With no match it falls back to a default for the
// category.
func InferMonetization(blob string, category Category) []string {
	var found labelSet
	for _, rule := range monetizationRules {
		if !rule.pattern.MatchString(blob) {
			continue
		}
		if other, ok := monetizationExclusive[rule.label]; ok && found.has(other) {
			continue
		}
		found.add(rule.label)
	}
	if len(found.items) > 0 {
		return found.items
	}
	return defaultMonetization(category)
}

func defaultMonetization(category Category) []string {
	switch category {
	case CategoryContentSite:
		return []string{MonetizationDisplayAds, MonetizationAffiliate}
	case CategoryEcommerce:
		return []string{MonetizationProductSales}
	case CategorySaaS:
		return []string{MonetizationSubscription}
	default:
		return []string{MonetizationAffiliate}
	}
}
