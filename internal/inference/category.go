package inference

import "regexp"

type Category string

const (
	CategoryEcommerce       Category = "ecommerce"
	CategorySaaS            Category = "saas"
	CategoryNewsletter      Category = "newsletter"
	CategoryCommunity       Category = "community"
	CategoryServiceBusiness Category = "service-business"
	CategoryToolOrApp       Category = "tool-or-app"
	CategoryContentSite     Category = "content-site"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryContentSite,
	CategoryEcommerce,
	CategorySaaS,
	CategoryNewsletter,
	CategoryCommunity,
	CategoryServiceBusiness,
	CategoryToolOrApp,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label is the human-readable name used in generated copy.
func (c Category) Label() string {
	switch c {
	case CategoryEcommerce:
		return "e-commerce store"
	case CategorySaaS:
		return "SaaS business"
	case CategoryNewsletter:
		return "newsletter"
	case CategoryCommunity:
		return "online community"
	case CategoryServiceBusiness:
		return "service business"
	case CategoryToolOrApp:
		return "web tool"
	default:
		return "content site"
	}
}

type categoryRule struct {
	category Category
	pattern  *regexp.Regexp
}

// Order matters: the first matching rule wins.
var categoryRules = []categoryRule{
	{CategoryEcommerce, regexp.MustCompile(`(?i)\b(shop|shops|store|storefront|cart|checkout|e-?commerce|buy now|add to cart|shopify|woocommerce|merch)\b`)},
	{CategorySaaS, regexp.MustCompile(`(?i)\b(saas|software as a service|free trial|start your trial|pricing plans?|dashboard|platform|api|b2b software)\b`)},
	{CategoryNewsletter, regexp.MustCompile(`(?i)\b(newsletter|substack|beehiiv|weekly digest|mailing list|subscribe to our emails?)\b`)},
	{CategoryCommunity, regexp.MustCompile(`(?i)\b(forums?|community|communities|members|discussion|discord|message board)\b`)},
	{CategoryServiceBusiness, regexp.MustCompile(`(?i)\b(agency|consulting|consultancy|services|freelance|hire us|our clients|book a call)\b`)},
	{CategoryToolOrApp, regexp.MustCompile(`(?i)\b(tools?|calculator|generator|converter|app|apps|extension|plugin|widget|utility)\b`)},
}

// ClassifyCategory returns the first category whose keywords occur in blob,
// or CategoryContentSite.
func ClassifyCategory(blob string) Category {
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(blob) {
			return rule.category
		}
	}
	return CategoryContentSite
}
