package highlight

import (
	"fmt"
	"strings"

	"github.com/nao1215/wordwatch/internal/dom"
	"golang.org/x/net/html"
)

const (
	// StyleID is the id of the injected <style> element.
	StyleID = "wordwatch-highlight-style"

	// DefaultColor is the marker background when none is configured.
	DefaultColor = "#ffeb3b"
)

// unsafeColorChars could end the CSS declaration or the <style> element.
const unsafeColorChars = ";{}<>\"'\\\n\r"

// ValidColor reports whether color is non-empty and safe to place inside
// the marker rule.
func ValidColor(color string) bool {
	return strings.TrimSpace(color) != "" && !strings.ContainsAny(color, unsafeColorChars)
}

// StyleRule returns the CSS rule for markers with the given class. Empty or
// unsafe colors are replaced by DefaultColor.
func StyleRule(class, color string) string {
	if !ValidColor(color) {
		color = DefaultColor
	}
	return fmt.Sprintf(`
.%s {
  background: %s;
  color: #000;
  padding: 0 2px;
  border-radius: 2px;
}
`, class, color)
}

// InjectStyle adds the marker style to the document head unless an element
// with StyleID already exists. It reports whether a style was inserted.
// A missing <head> is created as the first child of <html>.
func (s *Scanner) InjectStyle(doc *dom.Document, color string) (bool, error) {
	if doc.ElementByID(StyleID) != nil {
		return false, nil
	}

	head := doc.Head()
	if head == nil {
		htmlEl := dom.Closest(doc.Body(), func(n *html.Node) bool { return n.Data == "html" })
		if htmlEl == nil {
			return false, dom.ErrNoBody
		}
		head = dom.NewElement("head")
		htmlEl.InsertBefore(head, htmlEl.FirstChild)
	}

	style := dom.NewElement("style", html.Attribute{Key: "id", Val: StyleID})
	style.AppendChild(dom.NewText(StyleRule(s.class, color)))
	if err := doc.AppendChild(head, style); err != nil {
		return false, err
	}
	return true, nil
}
