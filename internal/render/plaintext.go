package render

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText strips markup and decodes entities, returning the visible text of
// rendered output. Rendering is content-preserving, so for markup produced by
// Highlights this recovers the original body.
func PlainText(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String(), nil
}
