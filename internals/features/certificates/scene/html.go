package scene

import (
	"html"
	"strings"
)

var voidTags = map[string]bool{"img": true, "br": true}

// RenderHTML serializes the tree into a standalone document with zero margins,
// suitable for a headless browser snapshot.
func RenderHTML(root *Element) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
	b.WriteString("<style>html,body{margin:0;padding:0;background:#ffffff;}</style>")
	b.WriteString("</head><body>")
	writeElement(&b, root)
	b.WriteString("</body></html>")
	return b.String()
}

func writeElement(b *strings.Builder, e *Element) {
	if e == nil {
		return
	}
	tag := e.Tag
	if tag == "" {
		tag = "div"
	}
	b.WriteByte('<')
	b.WriteString(tag)
	if e.ID != "" {
		writeAttr(b, "id", e.ID)
	}
	if e.Role != "" {
		writeAttr(b, "data-role", e.Role)
	}
	if e.Src != "" {
		writeAttr(b, "src", e.Src)
		writeAttr(b, "crossorigin", "anonymous")
	}
	if len(e.Style) > 0 {
		writeAttr(b, "style", e.Style.CSS())
	}
	b.WriteByte('>')
	if voidTags[tag] {
		return
	}
	b.WriteString(html.EscapeString(e.Text))
	for _, c := range e.Children {
		writeElement(b, c)
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString("=\"")
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
}
