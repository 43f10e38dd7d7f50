package listing

import (
	"io"

	"golang.org/x/net/html"
)

// ParseHrefs returns the href attribute of every anchor element in the
// document, in document order.
//
// golang.org/x/net/html recovers from malformed markup the way browsers do,
// so a broken listing yields whatever anchors survive parsing. Anchors
// without an href, or with an empty one, are ignored.
func ParseHrefs(content io.Reader) ([]string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	hrefs := make([]string, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := getAttr(n, "href"); ok && href != "" {
				hrefs = append(hrefs, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return hrefs, nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
