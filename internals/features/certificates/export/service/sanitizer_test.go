package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"sifs_backend/internals/features/certificates/scene"
)

func TestDefaultSanitizerFallbacks(t *testing.T) {
	root := &scene.Element{Tag: "div", Style: scene.Style{
		"background-color": "oklab(0.9 0 0)",
		"color":            "oklch(0.3 0.02 260)",
		"border-top-color": "lch(50% 30 40)",
		"outline-color":    "hwb(120 10% 20%)",
		"text-shadow":      "1px 1px 2px color(display-p3 0 0 0)",
		"width":            "1123px",
	}}
	root.Append(&scene.Element{Tag: "span", Style: scene.Style{
		"color": "color-mix(in srgb, red 50%, blue)",
		"fill":  "#123456",
	}})

	n := DefaultStyleSanitizer().Sweep(root)

	assert.Equal(t, 6, n)
	assert.Equal(t, "#ffffff", root.Style["background-color"])
	assert.Equal(t, "#000000", root.Style["color"])
	assert.Equal(t, "transparent", root.Style["border-top-color"])
	assert.Equal(t, "transparent", root.Style["outline-color"])
	assert.Equal(t, "none", root.Style["text-shadow"])
	assert.Equal(t, "1123px", root.Style["width"])
	assert.Equal(t, "#000000", root.Children[0].Style["color"])
	assert.Equal(t, "#123456", root.Children[0].Style["fill"])
}

func TestUsesModernColor(t *testing.T) {
	for _, v := range []string{"oklch(1 0 0)", "LAB(1 2 3)", "color(srgb 1 0 0)", "color-mix(in oklab, red, blue)", "1px solid hwb(0 0% 0%)"} {
		assert.True(t, UsesModernColor(v), v)
	}
	for _, v := range []string{"#fff", "rgba(0, 0, 0, 0.6)", "hsl(0 100% 50%)", "translateX(-50%)", "scale(0.5)"} {
		assert.False(t, UsesModernColor(v), v)
	}
}

func TestSanitizerFirstRuleWins(t *testing.T) {
	s := &StyleSanitizer{Rules: []StyleRule{
		{Name: "first", Match: func(prop, _ string) bool { return prop == "color" }, Fallback: "red"},
		{Name: "second", Match: func(prop, _ string) bool { return prop == "color" }, Fallback: "blue"},
	}}
	el := &scene.Element{Style: scene.Style{"color": "x"}}
	s.Sweep(el)
	assert.Equal(t, "red", el.Style["color"])

	// new syntaxes are added as rules without touching the traversal
	s.Rules = append([]StyleRule{{Name: "custom", Match: func(_, v string) bool { return v == "x" }, Fallback: "green"}}, s.Rules...)
	el.Style["color"] = "x"
	s.Sweep(el)
	assert.Equal(t, "green", el.Style["color"])
}

func TestCertificateFileName(t *testing.T) {
	cases := map[string]string{
		"SIFS/2025/001":    "SIFS_Certificate_SIFS-2025-001.png",
		"  ABC123  ":       "SIFS_Certificate_ABC123.png",
		`a\b//c`:           "SIFS_Certificate_a-b-c.png",
		"Café Nº 7":        "SIFS_Certificate_Cafe-No-7.png",
		"../../etc/passwd": "SIFS_Certificate_etc-passwd.png",
		"///":              "SIFS_Certificate_unknown.png",
		"":                 "SIFS_Certificate_unknown.png",
	}
	for in, want := range cases {
		assert.Equal(t, want, CertificateFileName(in), in)
	}
}

func TestStageConcurrentAttachDetach(t *testing.T) {
	st := NewStage()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := &scene.Element{}
			id := st.Attach(n)
			assert.Equal(t, id, n.ID)
			st.Detach(id)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, st.Len())
}
