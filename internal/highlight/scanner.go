package highlight

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/nao1215/wordwatch/internal/dom"
	"github.com/nao1215/wordwatch/internal/pattern"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
)

const (
	// MarkerClass is the class carried by every marker element.
	MarkerClass = "wordwatch-highlight"

	// markerTag is the element used to wrap a match.
	markerTag = "span"
)

// excludedParents lists elements whose text is not visible page text.
var excludedParents = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Textarea: true,
	atom.Input:    true,
}

// Result summarizes one scan pass.
type Result struct {
	// Found is true when at least one text node was replaced.
	Found bool

	// Markers is the number of marker elements inserted.
	Markers int

	// Nodes is the number of text nodes replaced.
	Nodes int

	// Skipped counts nodes that were detached before they could be replaced.
	Skipped int

	// Words counts matched text, case-folded.
	Words map[string]int
}

// Scanner finds and marks matches.
type Scanner struct {
	class  string
	logger *slog.Logger
	fold   cases.Caser
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMarkerClass overrides the marker class.
func WithMarkerClass(class string) Option {
	return func(s *Scanner) {
		if class != "" {
			s.class = class
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// NewScanner creates a Scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		class: MarkerClass,
		fold:  cases.Fold(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Class returns the marker class this scanner uses.
func (s *Scanner) Class() string {
	return s.class
}

// Scan marks every match of m in the text under root.
// A nil root scans the document body.
func (s *Scanner) Scan(doc *dom.Document, root *html.Node, m *pattern.Matcher) Result {
	result := Result{Words: make(map[string]int)}
	if root == nil {
		root = doc.Body()
	}
	if root == nil || m == nil {
		return result
	}

	// Phase 1: collect. The tree is not modified until this returns.
	nodes := s.collect(root)

	// Phase 2: mutate.
	for _, n := range nodes {
		text := n.Data
		locs := m.FindAll(text)
		if len(locs) == 0 {
			continue
		}

		fragment := s.fragment(text, locs)
		if err := doc.ReplaceWithFragment(n, fragment); err != nil {
			if errors.Is(err, dom.ErrDetached) {
				result.Skipped++
				continue
			}
			s.logger.Debug("text node replacement failed", "error", err)
			continue
		}

		result.Found = true
		result.Nodes++
		result.Markers += len(locs)
		for _, loc := range locs {
			result.Words[s.fold.String(text[loc[0]:loc[1]])]++
		}
	}

	s.logger.Debug("scan finished",
		"location", doc.Location(),
		"candidates", len(nodes),
		"replaced", result.Nodes,
		"markers", result.Markers,
		"skipped", result.Skipped,
	)

	return result
}

// collect returns the eligible text nodes under root in document order.
func (s *Scanner) collect(root *html.Node) []*html.Node {
	// A root that is itself inside a marker has nothing to offer.
	if dom.Closest(root, s.isMarker) != nil {
		return nil
	}

	var nodes []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		switch n.Type {
		case html.ElementNode:
			// Prune subtrees that can never yield eligible text.
			if n != root && (s.isMarker(n) || excludedParents[n.DataAtom]) {
				return false
			}
			return true
		case html.TextNode:
			if s.accept(n) {
				nodes = append(nodes, n)
			}
			return false
		default:
			return true
		}
	})
	return nodes
}

// accept applies the text node filter.
func (s *Scanner) accept(n *html.Node) bool {
	if strings.TrimSpace(n.Data) == "" {
		return false
	}
	parent := dom.ParentElement(n)
	if parent == nil {
		return false
	}
	if dom.Closest(parent, s.isMarker) != nil {
		return false
	}
	return !excludedParents[parent.DataAtom]
}

// fragment splits text into gap text and marker elements.
// Empty gaps are never emitted.
func (s *Scanner) fragment(text string, locs [][]int) []*html.Node {
	fragment := make([]*html.Node, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if start > last {
			fragment = append(fragment, dom.NewText(text[last:start]))
		}
		mark := dom.NewElement(markerTag, html.Attribute{Key: "class", Val: s.class})
		mark.AppendChild(dom.NewText(text[start:end]))
		fragment = append(fragment, mark)
		last = end
	}
	if last < len(text) {
		fragment = append(fragment, dom.NewText(text[last:]))
	}
	return fragment
}

func (s *Scanner) isMarker(n *html.Node) bool {
	return dom.HasClass(n, s.class)
}

// MarkedWords counts the case-folded text of the markers under root.
func (s *Scanner) MarkedWords(root *html.Node) map[string]int {
	words := make(map[string]int)
	if root == nil {
		return words
	}
	dom.Walk(root, func(n *html.Node) bool {
		if n != root && s.isMarker(n) {
			words[s.fold.String(dom.TextContent(n))]++
			return false
		}
		return true
	})
	return words
}

// Strip unwraps every marker under root back into plain text and returns
// the number of markers removed. Text split by the markers is merged again
// so a later scan sees the original text runs.
func (s *Scanner) Strip(doc *dom.Document, root *html.Node) int {
	if root == nil {
		root = doc.Body()
	}
	if root == nil {
		return 0
	}

	var markers []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if n != root && s.isMarker(n) {
			markers = append(markers, n)
			return false
		}
		return true
	})

	removed := 0
	parents := make(map[*html.Node]bool)
	var order []*html.Node
	for _, mark := range markers {
		parent := mark.Parent
		text := dom.NewText(dom.TextContent(mark))
		if err := doc.ReplaceWithFragment(mark, []*html.Node{text}); err != nil {
			continue
		}
		removed++
		if !parents[parent] {
			parents[parent] = true
			order = append(order, parent)
		}
	}
	for _, parent := range order {
		_ = doc.Normalize(parent) //nolint:errcheck // parent may have been detached meanwhile
	}
	return removed
}
