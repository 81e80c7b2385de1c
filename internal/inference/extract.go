package inference

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// PageMeta is what the engine reads out of a page's markup.
type PageMeta struct {
	Title       string
	Description string
	Keywords    string
	Generator   string
}

// Extract scans body for the first <title> text and the first description,
// keywords and generator meta tags. Tag and attribute names are matched
// case-insensitively and attribute order does not matter. Entities are
// decoded.
func Extract(body []byte) PageMeta {
	var (
		meta     PageMeta
		inTitle  bool
		gotTitle bool
	)

	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return meta
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = !gotTitle && tt == html.StartTagToken
			case "meta":
				name, content, ok := metaNameContent(tok.Attr)
				if !ok {
					continue
				}
				switch name {
				case "description":
					setOnce(&meta.Description, content)
				case "keywords":
					setOnce(&meta.Keywords, content)
				case "generator":
					setOnce(&meta.Generator, content)
				}
			}
		case html.TextToken:
			if inTitle {
				meta.Title = collapseSpace(string(z.Text()))
				gotTitle = true
				inTitle = false
			}
		case html.EndTagToken:
			if tok := z.Token(); tok.Data == "title" {
				if inTitle {
					gotTitle = true
				}
				inTitle = false
			}
		}
	}
}

func metaNameContent(attrs []html.Attribute) (string, string, bool) {
	var name, content string
	var hasContent bool
	for _, a := range attrs {
		switch a.Key {
		case "name":
			name = strings.ToLower(strings.TrimSpace(a.Val))
		case "content":
			content = a.Val
			hasContent = true
		}
	}
	return name, collapseSpace(content), name != "" && hasContent
}

func setOnce(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
