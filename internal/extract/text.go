package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// skippedElements are HTML elements whose text content is never visible
// page copy. Navigation and footer chrome is kept: entities without a
// content selector are compared on the whole page, and chrome is stable
// enough not to move the similarity score.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"iframe":   true,
	"svg":      true,
}

// VisibleText parses HTML from r and returns its visible text with runs of
// whitespace collapsed to single spaces.
//
// When selector is non-empty it is applied as a CSS selector and only the
// text of matching elements is returned, in document order. A selector
// that matches nothing yields ErrSelectorNoMatch.
//
// Design decision: We parse with golang.org/x/net/html and walk the node
// tree ourselves for the whole-document case, because goquery's Text()
// includes script and style contents. The selector case wraps the same
// parsed document with goquery for CSS matching, then runs the same walker
// over the matched nodes, so both paths produce identical text for
// identical content.
func VisibleText(r io.Reader, selector string) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var nodes []*html.Node
	if selector == "" {
		nodes = []*html.Node{root}
	} else {
		doc := goquery.NewDocumentFromNode(root)
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			return "", fmt.Errorf("%w: %q", ErrSelectorNoMatch, selector)
		}
		nodes = sel.Nodes
	}

	var sb strings.Builder
	for _, n := range nodes {
		collectText(n, &sb)
	}

	text := collapseWhitespace(sb.String())
	if text == "" {
		return "", ErrEmptyPage
	}
	return text, nil
}

// collectText walks the node tree appending visible text to sb.
func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skippedElements[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// collapseWhitespace reduces all whitespace runs to single spaces and trims
// the ends. Extraction output must be stable across cosmetic reformatting
// of the page source, otherwise indentation changes would register as
// content changes.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
