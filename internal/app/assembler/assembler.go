// Package assembler turns an ordered component list into one static HTML
// document. It performs no I/O: the same components always produce the same
// bytes.
package assembler

import (
	"html"
	"sort"
	"strings"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

// HighlightMessageType is the postMessage type the embedded listener reacts to.
const HighlightMessageType = "highlight-component"

// WrapperAttr is the attribute that makes each component container addressable.
const WrapperAttr = "data-component-id"

const documentHead = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Generated Screen</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="min-h-screen">
`

// The listener outlines the matching wrapper and its direct children, so that
// fixed or sticky elements that escape the wrapper box still show the outline.
const highlightScript = `
    <script>
    window.addEventListener('message', (e) => {
        if (!e.data || e.data.type !== '` + HighlightMessageType + `') return;
        const targetId = e.data.id;
        document.querySelectorAll('[` + WrapperAttr + `]').forEach(wrapper => {
            const isTarget = wrapper.dataset.componentId === targetId;
            const style = isTarget ? '2px solid #3b82f6' : '';
            const offset = isTarget ? '2px' : '';
            wrapper.style.outline = style;
            wrapper.style.outlineOffset = offset;
            Array.from(wrapper.children).forEach(child => {
                child.style.outline = style;
                child.style.outlineOffset = offset;
            });
        });
    });
    </script>
</body>
</html>`

// Assemble sorts components by Order (ties keep input order) and composes
// them into a full document with the highlight listener embedded.
func Assemble(components []domain.Component) string {
	sorted := Sorted(components)

	var b strings.Builder
	b.WriteString(documentHead)
	for i, c := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		writeComponent(&b, c)
	}
	b.WriteString(highlightScript)
	return b.String()
}

// Sorted returns a stably sorted copy of components; the input is not modified.
func Sorted(components []domain.Component) []domain.Component {
	out := make([]domain.Component, len(components))
	copy(out, components)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

func writeComponent(b *strings.Builder, c domain.Component) {
	id := html.EscapeString(string(c.ID))

	b.WriteString("    <!-- [START] Component: ")
	b.WriteString(commentSafe(c.Name))
	b.WriteString(" (Type: ")
	b.WriteString(commentSafe(c.Type))
	b.WriteString(" | ID: ")
	b.WriteString(commentSafe(string(c.ID)))
	b.WriteString(") -->\n")

	b.WriteString(`    <div ` + WrapperAttr + `="`)
	b.WriteString(id)
	b.WriteString(`" style="transition: outline 0.15s ease, outline-offset 0.15s ease;">` + "\n    ")
	b.WriteString(c.HTML)
	b.WriteString("\n    </div>\n")

	b.WriteString("    <!-- [END] Component: ")
	b.WriteString(commentSafe(c.Name))
	b.WriteString(" -->\n")
}

// commentSafe keeps free text from closing the surrounding HTML comment.
func commentSafe(s string) string {
	s = strings.ReplaceAll(s, "--", "- -")
	return strings.ReplaceAll(s, ">", "&gt;")
}
