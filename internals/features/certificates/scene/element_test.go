package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Element {
	root := &Element{Tag: "div", Role: RoleCertificate, Style: Style{"width": "1123px", "transform": "scale(0.5)"}}
	root.Append(
		&Element{Tag: "img", Role: RoleTemplate, Src: "/t.png"},
		&Element{Tag: "span", Role: RoleName, Text: "Jane <Doe>", Style: Style{"top": "24%", "color": "#ffffff"}},
	)
	return root
}

func TestCloneIsDeep(t *testing.T) {
	orig := sample()
	c := orig.Clone()

	c.SetStyle("transform", "none")
	c.Find(RoleName).SetStyle("color", "oklch(0.5 0.1 20)")
	c.Find(RoleName).Text = "changed"
	c.Append(&Element{Tag: "span"})

	assert.Equal(t, "scale(0.5)", orig.Style.Get("transform"))
	assert.Equal(t, "#ffffff", orig.Find(RoleName).Style.Get("color"))
	assert.Equal(t, "Jane <Doe>", orig.Find(RoleName).Text)
	assert.Len(t, orig.Children, 2)
}

func TestStyleParsing(t *testing.T) {
	s := Style{"width": "794px", "height": " 1123 ", "top": "24%", "left": "auto"}

	w, ok := s.Px("width")
	require.True(t, ok)
	assert.Equal(t, 794.0, w)

	h, ok := s.Px("height")
	require.True(t, ok)
	assert.Equal(t, 1123.0, h)

	p, ok := s.Percent("top")
	require.True(t, ok)
	assert.Equal(t, 24.0, p)

	_, ok = s.Percent("left")
	assert.False(t, ok)
	_, ok = s.Px("missing")
	assert.False(t, ok)
}

func TestRenderHTMLEscapes(t *testing.T) {
	out := RenderHTML(sample())

	assert.Contains(t, out, `<div data-role="certificate" style="transform: scale(0.5); width: 1123px;">`)
	assert.Contains(t, out, `<img data-role="template" src="/t.png" crossorigin="anonymous">`)
	assert.Contains(t, out, `Jane &lt;Doe&gt;</span>`)
	assert.NotContains(t, out, "</img>")
}
