// Package lexical walks tree-shaped rich-text documents as produced by
// block editors. The engine only depends on the minimal node shape (type,
// text, children, link target fields); everything else in a document is
// carried along untouched and ignored.
package lexical

import (
	"github.com/tidwall/gjson"
)

// NodeKind classifies a node into the closed set the extractor understands.
type NodeKind int

const (
	KindContainer NodeKind = iota
	KindText
	KindLink
	KindInternalRef
)

// Node is one parsed rich-text node.
type Node struct {
	Kind       NodeKind
	Type       string
	Text       string
	URL        string
	RelationTo string
	DocID      string
	Children   []Node
}

// Parse builds a node tree from raw rich-text JSON. Malformed or
// unexpected input never fails: anything that does not look like a node
// parses as an empty container. A top-level "root" wrapper is unwrapped.
func Parse(raw []byte) Node {
	if len(raw) == 0 {
		return Node{}
	}
	v := gjson.ParseBytes(raw)
	if root := v.Get("root"); root.Exists() {
		v = root
	}
	return parseValue(v)
}

func parseValue(v gjson.Result) Node {
	if !v.IsObject() {
		if v.IsArray() {
			n := Node{}
			v.ForEach(func(_, child gjson.Result) bool {
				n.Children = append(n.Children, parseValue(child))
				return true
			})
			return n
		}
		return Node{}
	}

	n := Node{
		Type: v.Get("type").String(),
		Text: v.Get("text").String(),
	}

	v.Get("children").ForEach(func(_, child gjson.Result) bool {
		n.Children = append(n.Children, parseValue(child))
		return true
	})

	n.Kind = classify(v, &n)
	return n
}

// classify decides the node kind. A node is a link when its type says so
// and a URL is present (at the node or under fields); it is an internal
// reference when it carries a structured document reference.
func classify(v gjson.Result, n *Node) NodeKind {
	if doc := v.Get("fields.doc"); doc.Exists() {
		n.RelationTo = doc.Get("relationTo").String()
		n.DocID = refID(doc.Get("value"))
		if n.RelationTo != "" && n.DocID != "" {
			n.URL = "/" + n.RelationTo + "/" + n.DocID
			return KindInternalRef
		}
	}

	if n.Type == "link" || n.Type == "autolink" {
		n.URL = v.Get("url").String()
		if n.URL == "" {
			n.URL = v.Get("fields.url").String()
		}
		return KindLink
	}

	if n.Text != "" {
		return KindText
	}
	return KindContainer
}

// refID extracts the referenced document id from a relationship value,
// which may be a plain id (string or number) or a populated document.
func refID(v gjson.Result) string {
	switch {
	case v.IsObject():
		return v.Get("id").String()
	case v.Type == gjson.String, v.Type == gjson.Number:
		return v.String()
	default:
		return ""
	}
}
