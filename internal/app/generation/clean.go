package generation

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:html)?[ \t]*\n?")
	trailingFence = regexp.MustCompile("\n?```\\s*$")
	bodyTag       = regexp.MustCompile(`(?i)<body[\s>]`)
)

// CleanFragment strips markdown fences and, when the model returned a whole
// document, keeps only the inner content of <body>.
func CleanFragment(raw string) string {
	out := strings.TrimSpace(raw)
	out = leadingFence.ReplaceAllString(out, "")
	out = trailingFence.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)

	if !bodyTag.MatchString(out) {
		return out
	}
	if inner, ok := bodyInner(out); ok {
		return inner
	}
	return out
}

func bodyInner(doc string) (string, bool) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", false
	}

	body := findBody(root)
	if body == nil {
		return "", false
	}

	var b strings.Builder
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&b, n); err != nil {
			return "", false
		}
	}
	return strings.TrimSpace(b.String()), true
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}
