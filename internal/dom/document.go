package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a mutable HTML document with a location.
type Document struct {
	root      *html.Node
	location  string
	observers []*Observer
}

// New wraps an existing node tree. root is normally an html.DocumentNode.
func New(root *html.Node, location string) *Document {
	return &Document{root: root, location: location}
}

// Parse reads an HTML document from r.
// The parser always synthesizes <html>, <head> and <body>.
func Parse(r io.Reader, location string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return New(root, location), nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s, location string) (*Document, error) {
	return Parse(strings.NewReader(s), location)
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Location returns the URL the document was loaded from.
func (d *Document) Location() string {
	return d.location
}

// SetLocation updates the document location, e.g. after a redirect.
func (d *Document) SetLocation(location string) {
	d.location = location
}

// Body returns the <body> element, or nil if the document has none.
func (d *Document) Body() *html.Node {
	return FindElement(d.root, atom.Body)
}

// Head returns the <head> element, or nil if the document has none.
func (d *Document) Head() *html.Node {
	return FindElement(d.root, atom.Head)
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && Attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Contains reports whether n is attached to this document's tree.
func (d *Document) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// AppendChild appends child to parent and records a childList mutation.
// child must not already have a parent.
func (d *Document) AppendChild(parent, child *html.Node) error {
	if !d.Contains(parent) {
		return ErrDetached
	}
	parent.AppendChild(child)
	d.record(MutationRecord{Type: ChildList, Target: parent, Added: []*html.Node{child}})
	return nil
}

// RemoveChild detaches child from its parent and records a childList mutation.
func (d *Document) RemoveChild(child *html.Node) error {
	parent := child.Parent
	if parent == nil || !d.Contains(parent) {
		return ErrDetached
	}
	parent.RemoveChild(child)
	d.record(MutationRecord{Type: ChildList, Target: parent, Removed: []*html.Node{child}})
	return nil
}

// ReplaceWithFragment replaces old with the nodes of fragment, in order.
// The whole replacement is applied before any observer can see it and
// produces a single childList record. fragment nodes must be parentless.
func (d *Document) ReplaceWithFragment(old *html.Node, fragment []*html.Node) error {
	parent := old.Parent
	if parent == nil || !d.Contains(parent) {
		return ErrDetached
	}
	for _, n := range fragment {
		parent.InsertBefore(n, old)
	}
	parent.RemoveChild(old)

	added := make([]*html.Node, len(fragment))
	copy(added, fragment)
	d.record(MutationRecord{Type: ChildList, Target: parent, Added: added, Removed: []*html.Node{old}})
	return nil
}

// ReplaceChildren removes every child of parent and appends children.
// It records one childList mutation.
func (d *Document) ReplaceChildren(parent *html.Node, children []*html.Node) error {
	if !d.Contains(parent) {
		return ErrDetached
	}
	var removed []*html.Node
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		removed = append(removed, c)
		c = next
	}
	for _, c := range children {
		parent.AppendChild(c)
	}

	added := make([]*html.Node, len(children))
	copy(added, children)
	d.record(MutationRecord{Type: ChildList, Target: parent, Added: added, Removed: removed})
	return nil
}

// SetText changes the data of a text node and records a characterData mutation.
func (d *Document) SetText(n *html.Node, text string) error {
	if !d.Contains(n) {
		return ErrDetached
	}
	old := n.Data
	n.Data = text
	d.record(MutationRecord{Type: CharacterData, Target: n, OldValue: old})
	return nil
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document to a string. Render errors yield "".
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Normalize merges adjacent text children of n and drops empty ones.
// A childList record is produced only when something changed.
func (d *Document) Normalize(n *html.Node) error {
	if !d.Contains(n) {
		return ErrDetached
	}
	var added, removed []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type != html.TextNode {
			c = next
			continue
		}
		if c.Data == "" {
			n.RemoveChild(c)
			removed = append(removed, c)
			c = next
			continue
		}
		if next == nil || next.Type != html.TextNode {
			c = next
			continue
		}
		var sb strings.Builder
		run := []*html.Node{c}
		sb.WriteString(c.Data)
		for next != nil && next.Type == html.TextNode {
			sb.WriteString(next.Data)
			run = append(run, next)
			next = next.NextSibling
		}
		merged := NewText(sb.String())
		n.InsertBefore(merged, c)
		for _, r := range run {
			n.RemoveChild(r)
		}
		added = append(added, merged)
		removed = append(removed, run...)
		c = next
	}
	if len(added) > 0 || len(removed) > 0 {
		d.record(MutationRecord{Type: ChildList, Target: n, Added: added, Removed: removed})
	}
	return nil
}
