package highlight

import (
	"strings"
	"testing"

	"github.com/nao1215/wordwatch/internal/dom"
	"github.com/nao1215/wordwatch/internal/pattern"
	"golang.org/x/net/html"
)

func mustDoc(t *testing.T, body string) *dom.Document {
	t.Helper()

	doc, err := dom.ParseString("<html><head></head><body>"+body+"</body></html>", "https://example.com/page")
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

func mustMatcher(t *testing.T, words ...string) *pattern.Matcher {
	t.Helper()

	m, err := pattern.Build(words)
	if err != nil {
		t.Fatalf("failed to build matcher: %v", err)
	}
	return m
}

func bodyHTML(t *testing.T, doc *dom.Document) string {
	t.Helper()

	var sb strings.Builder
	for c := doc.Body().FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			t.Fatalf("render failed: %v", err)
		}
	}
	return sb.String()
}

func countMarkers(doc *dom.Document) int {
	n := 0
	dom.Walk(doc.Root(), func(node *html.Node) bool {
		if dom.HasClass(node, MarkerClass) {
			n++
		}
		return true
	})
	return n
}

func TestScan(t *testing.T) {
	t.Parallel()

	t.Run("marks case-insensitive match", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p>This is Urgent news</p>`)
		result := NewScanner().Scan(doc, nil, mustMatcher(t, "urgent"))

		if !result.Found {
			t.Fatal("expected Found to be true")
		}
		if result.Markers != 1 || result.Nodes != 1 {
			t.Errorf("expected 1 marker in 1 node, got %d markers in %d nodes", result.Markers, result.Nodes)
		}
		if result.Words["urgent"] != 1 {
			t.Errorf("expected word count for 'urgent', got %v", result.Words)
		}

		want := `<p>This is <span class="wordwatch-highlight">Urgent</span> news</p>`
		if got := bodyHTML(t, doc); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("second scan adds nothing", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p>urgent and more urgent</p><div>urgent<b>urgent</b></div>`)
		s := NewScanner()
		m := mustMatcher(t, "urgent")

		first := s.Scan(doc, nil, m)
		if first.Markers != 4 {
			t.Fatalf("expected 4 markers on first pass, got %d", first.Markers)
		}
		before := bodyHTML(t, doc)

		second := s.Scan(doc, nil, m)
		if second.Found || second.Markers != 0 {
			t.Errorf("expected second pass to find nothing, got %+v", second)
		}
		if after := bodyHTML(t, doc); after != before {
			t.Errorf("document changed on second pass:\nbefore: %s\nafter:  %s", before, after)
		}
		if countMarkers(doc) != 4 {
			t.Errorf("expected 4 markers in document, got %d", countMarkers(doc))
		}
	})

	t.Run("excluded elements are never marked", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<script>var urgent = 1;</script>`+
			`<style>.urgent{}</style>`+
			`<noscript>urgent</noscript>`+
			`<textarea>urgent</textarea>`+
			`<input id="in" value="urgent">`)

		// The parser never gives <input> children, so add one directly.
		input := doc.ElementByID("in")
		if err := doc.AppendChild(input, dom.NewText("urgent")); err != nil {
			t.Fatalf("failed to append text to input: %v", err)
		}

		result := NewScanner().Scan(doc, nil, mustMatcher(t, "urgent"))
		if result.Found {
			t.Errorf("expected no matches in excluded elements, got %+v", result)
		}
		if countMarkers(doc) != 0 {
			t.Errorf("expected no markers, got %d", countMarkers(doc))
		}
	})

	t.Run("whole node match leaves no empty siblings", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p id="p">urgent</p>`)
		NewScanner().Scan(doc, nil, mustMatcher(t, "urgent"))

		p := doc.ElementByID("p")
		if p.FirstChild == nil || p.FirstChild != p.LastChild {
			t.Fatalf("expected exactly one child, got %s", bodyHTML(t, doc))
		}
		if !dom.HasClass(p.FirstChild, MarkerClass) {
			t.Error("expected the only child to be a marker")
		}
		if dom.TextContent(p.FirstChild) != "urgent" {
			t.Errorf("expected marker text 'urgent', got %q", dom.TextContent(p.FirstChild))
		}
	})

	t.Run("adjacent matches each get a marker", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p id="p">ababx</p>`)
		result := NewScanner().Scan(doc, nil, mustMatcher(t, "ab"))

		if result.Markers != 2 {
			t.Fatalf("expected 2 markers, got %d", result.Markers)
		}
		want := `<p id="p"><span class="wordwatch-highlight">ab</span><span class="wordwatch-highlight">ab</span>x</p>`
		if got := bodyHTML(t, doc); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
		for c := doc.ElementByID("p").FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && c.Data == "" {
				t.Error("found empty text node")
			}
		}
	})

	t.Run("multiple words in declared order", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p>Big SALE on cats and category pages</p>`)
		result := NewScanner().Scan(doc, nil, mustMatcher(t, "sale", "cat", "category"))

		if result.Markers != 3 {
			t.Errorf("expected 3 markers, got %d", result.Markers)
		}
		if result.Words["cat"] != 2 || result.Words["sale"] != 1 {
			t.Errorf("unexpected word counts: %v", result.Words)
		}
	})

	t.Run("whitespace-only nodes are ignored", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<div>   </div><p>
	</p>`)
		if nodes := NewScanner().collect(doc.Body()); len(nodes) != 0 {
			t.Errorf("expected whitespace-only text to be skipped, got %d nodes", len(nodes))
		}
	})

	t.Run("text already inside a marker is skipped", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<span class="x wordwatch-highlight"><b>urgent</b></span>`)
		result := NewScanner().Scan(doc, nil, mustMatcher(t, "urgent"))
		if result.Found {
			t.Error("expected marked text to be excluded")
		}
	})

	t.Run("detached root counts skipped nodes", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p>nothing</p>`)
		orphan := dom.NewElement("div")
		orphan.AppendChild(dom.NewText("urgent"))

		result := NewScanner().Scan(doc, orphan, mustMatcher(t, "urgent"))
		if result.Found {
			t.Error("expected no replacement in detached subtree")
		}
		if result.Skipped != 1 {
			t.Errorf("expected 1 skipped node, got %d", result.Skipped)
		}
	})

	t.Run("nil matcher is a no-op", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p>urgent</p>`)
		if result := NewScanner().Scan(doc, nil, nil); result.Found {
			t.Error("expected nil matcher to find nothing")
		}
	})

	t.Run("custom marker class", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p>urgent</p>`)
		s := NewScanner(WithMarkerClass("hit"))
		s.Scan(doc, nil, mustMatcher(t, "urgent"))

		if !strings.Contains(bodyHTML(t, doc), `class="hit"`) {
			t.Errorf("expected custom class, got %s", bodyHTML(t, doc))
		}
		if s.Class() != "hit" {
			t.Errorf("expected Class() to be 'hit', got %q", s.Class())
		}
	})
}

func TestStrip(t *testing.T) {
	t.Parallel()

	original := `<p>This is Urgent news about urgent things</p>`
	doc := mustDoc(t, original)
	s := NewScanner()
	s.Scan(doc, nil, mustMatcher(t, "urgent"))

	if words := s.MarkedWords(doc.Body()); len(words) != 1 || words["urgent"] != 2 {
		t.Errorf("expected urgent marked twice, got %v", words)
	}
	if removed := s.Strip(doc, nil); removed != 2 {
		t.Errorf("expected 2 markers removed, got %d", removed)
	}
	if got := bodyHTML(t, doc); got != original {
		t.Errorf("expected %s, got %s", original, got)
	}

	p := doc.Body().FirstChild
	if p.FirstChild != p.LastChild {
		t.Error("expected text to be merged back into a single node")
	}

	// A different word list can now mark text across the old boundaries.
	result := s.Scan(doc, nil, mustMatcher(t, "is urgent news"))
	if result.Markers != 1 {
		t.Errorf("expected 1 marker after re-scan, got %d", result.Markers)
	}
}

func TestInjectStyle(t *testing.T) {
	t.Parallel()

	t.Run("injects once", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p>x</p>`)
		s := NewScanner()

		inserted, err := s.InjectStyle(doc, "#ff0000")
		if err != nil {
			t.Fatalf("InjectStyle failed: %v", err)
		}
		if !inserted {
			t.Fatal("expected style to be inserted")
		}

		inserted, err = s.InjectStyle(doc, "#00ff00")
		if err != nil {
			t.Fatalf("InjectStyle failed: %v", err)
		}
		if inserted {
			t.Error("expected second injection to be skipped")
		}

		style := doc.ElementByID(StyleID)
		if style == nil || style.Parent != doc.Head() {
			t.Fatal("expected style element in head")
		}
		css := dom.TextContent(style)
		if !strings.Contains(css, "background: #ff0000;") {
			t.Errorf("expected first color in rule, got %s", css)
		}
		if !strings.Contains(css, "."+MarkerClass) {
			t.Errorf("expected marker class selector, got %s", css)
		}
	})

	t.Run("unsafe color falls back to default", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<p>x</p>`)
		s := NewScanner()
		if _, err := s.InjectStyle(doc, "red}</style><script>alert(1)</script>"); err != nil {
			t.Fatalf("InjectStyle failed: %v", err)
		}
		out := doc.String()
		if strings.Contains(out, "<script>") {
			t.Errorf("color escaped the style element: %s", out)
		}
		if !strings.Contains(dom.TextContent(doc.ElementByID(StyleID)), "background: "+DefaultColor+";") {
			t.Errorf("expected default color, got %s", out)
		}
	})

	t.Run("valid colors", func(t *testing.T) {
		t.Parallel()

		for _, c := range []string{"#fff", "orange", "rgb(255 200 0)", "hsl(50, 100%, 50%)"} {
			if !ValidColor(c) {
				t.Errorf("ValidColor(%q) = false", c)
			}
		}
		for _, c := range []string{"", "red;", "red}", "</style>", "a\nb", "url('x')"} {
			if ValidColor(c) {
				t.Errorf("ValidColor(%q) = true", c)
			}
		}
	})

	t.Run("empty color uses default", func(t *testing.T) {
		t.Parallel()

		if rule := StyleRule(MarkerClass, ""); !strings.Contains(rule, DefaultColor) {
			t.Errorf("expected default color in rule, got %s", rule)
		}
	})
}
