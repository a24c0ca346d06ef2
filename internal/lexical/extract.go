package lexical

import (
	"strings"

	"github.com/tsumibito/seoscan/internal/models"
)

// ExtractText walks the tree depth-first and returns the document's plain
// text plus one entry per heading node. Text leaves are joined with single
// spaces at each level.
func ExtractText(n Node) (string, []string) {
	var headings []string
	text := collectText(n, &headings)
	return text, headings
}

func collectText(n Node, headings *[]string) string {
	var parts []string
	if n.Text != "" {
		parts = append(parts, n.Text)
	}
	for _, child := range n.Children {
		if childText := collectText(child, headings); childText != "" {
			parts = append(parts, childText)
		}
	}
	joined := strings.Join(parts, " ")

	if isHeading(n.Type) && headings != nil {
		*headings = append(*headings, joined)
	}
	return joined
}

func isHeading(nodeType string) bool {
	return nodeType == "heading"
}

// ExtractLinks walks the tree depth-first and returns every link node,
// external and internal alike, with its anchor text. Children of a link
// node form its anchor and are not searched for further links.
func ExtractLinks(n Node) []models.LinkMatch {
	var links []models.LinkMatch
	collectLinks(n, &links)
	return links
}

func collectLinks(n Node, links *[]models.LinkMatch) {
	switch n.Kind {
	case KindLink:
		*links = append(*links, models.LinkMatch{
			URL:        n.URL,
			AnchorText: nodeText(n),
		})
		return
	case KindInternalRef:
		*links = append(*links, models.LinkMatch{
			URL:        n.URL,
			AnchorText: nodeText(n),
			RelationTo: n.RelationTo,
			DocID:      n.DocID,
		})
		return
	}
	for _, child := range n.Children {
		collectLinks(child, links)
	}
}

func nodeText(n Node) string {
	return collectText(n, nil)
}
