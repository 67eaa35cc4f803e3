package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Document struct {
	doc *goquery.Document
}

// FindAll returns every element whose tag is one of tags, in document order.
func (d *Document) FindAll(tags ...string) []Node {
	if len(tags) == 0 {
		return nil
	}

	var nodes []Node
	d.doc.Find(strings.Join(tags, ", ")).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, Node{sel: s})
	})
	return nodes
}

// Node is a single element of the parsed tree.
type Node struct {
	sel *goquery.Selection
}

func (n Node) Tag() string {
	return goquery.NodeName(n.sel)
}

// Text returns the visible text with whitespace runs collapsed to one space.
func (n Node) Text() string {
	return CollapseWhitespace(n.sel.Text())
}

// Next returns the following element sibling.
func (n Node) Next() (Node, bool) {
	return wrap(n.sel.Next())
}

// Prev returns the preceding element sibling.
func (n Node) Prev() (Node, bool) {
	return wrap(n.sel.Prev())
}

// Find returns the first descendant with the given tag. The node itself is
// not considered.
func (n Node) Find(tag string) (Node, bool) {
	return wrap(n.sel.Find(tag).First())
}

func (n Node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func wrap(s *goquery.Selection) (Node, bool) {
	if s == nil || s.Length() == 0 {
		return Node{}, false
	}
	return Node{sel: s}, true
}

func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
