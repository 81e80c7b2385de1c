package inference

import (
	"regexp"
	"strings"
)

// DefaultTechStack is reported when nothing more specific is detected.
var DefaultTechStack = []string{"HTML/CSS", "JavaScript"}

type generatorRule struct {
	needle string
	labels []string
}

// Generator meta tag values, matched as case-insensitive substrings.
var generatorRules = []generatorRule{
	{"wordpress", []string{"WordPress", "PHP"}},
	{"joomla", []string{"Joomla", "PHP"}},
	{"drupal", []string{"Drupal", "PHP"}},
	{"wix", []string{"Wix"}},
	{"squarespace", []string{"Squarespace"}},
	{"webflow", []string{"Webflow"}},
	{"ghost", []string{"Ghost", "Node.js"}},
}

type fingerprintRule struct {
	pattern *regexp.Regexp
	labels  []string
}

// Body fingerprints, only consulted when the generator tag says nothing.
var fingerprintRules = []fingerprintRule{
	{regexp.MustCompile(`(?i)cdn\.shopify\.com|myshopify\.com|Shopify\.theme`), []string{"Shopify"}},
	{regexp.MustCompile(`/_next/static|__NEXT_DATA__`), []string{"Next.js", "React"}},
	{regexp.MustCompile(`(?i)react(-dom)?(\.production)?(\.min)?\.js|data-reactroot|data-reactid`), []string{"React"}},
	{regexp.MustCompile(`(?i)/wp-content/|/wp-includes/`), []string{"WordPress", "PHP"}},
	{regexp.MustCompile(`___gatsby|gatsby-(image|focus|script)`), []string{"Gatsby", "React"}},
	{regexp.MustCompile(`__NUXT__|/_nuxt/`), []string{"Nuxt.js", "Vue.js"}},
	{regexp.MustCompile(`(?i)vue(\.runtime)?(\.global)?(\.prod)?(\.min)?\.js|data-v-[0-9a-f]{8}|data-server-rendered`), []string{"Vue.js"}},
	{regexp.MustCompile(`(?i)ng-version=|angular(\.min)?\.js|\bng-app\b`), []string{"Angular"}},
	{regexp.MustCompile(`(?i)laravel_session|laravel`), []string{"Laravel", "PHP"}},
	{regexp.MustCompile(`(?i)authenticity_token|rails-ujs|data-turbo-track|turbolinks`), []string{"Ruby on Rails"}},
	{regexp.MustCompile(`(?i)csrfmiddlewaretoken|django`), []string{"Django", "Python"}},
	{regexp.MustCompile(`(?i)\bflask\b|werkzeug`), []string{"Flask", "Python"}},
}

// DetectTechStack resolves the page's technologies. A recognised generator
// tag is authoritative; otherwise every body fingerprint found is unioned.
// Labels are unique and keep first-detection order.
func DetectTechStack(generator string, body string) []string {
	var stack labelSet

	if generator != "" {
		lower := strings.ToLower(generator)
		for _, rule := range generatorRules {
			if strings.Contains(lower, rule.needle) {
				stack.add(rule.labels...)
			}
		}
		if len(stack.items) > 0 {
			return stack.items
		}
	}

	for _, rule := range fingerprintRules {
		if rule.pattern.MatchString(body) {
			stack.add(rule.labels...)
		}
	}

	if len(stack.items) == 0 {
		return append([]string(nil), DefaultTechStack...)
	}
	return stack.items
}

// labelSet is an insertion-ordered set of labels.
type labelSet struct {
	items []string
	seen  map[string]struct{}
}

func (s *labelSet) add(labels ...string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, l := range labels {
		if _, ok := s.seen[l]; ok {
			continue
		}
		s.seen[l] = struct{}{}
		s.items = append(s.items, l)
	}
}

func (s *labelSet) has(label string) bool {
	_, ok := s.seen[label]
	return ok
}
