package service

import (
	"regexp"
	"strings"

	"sifs_backend/internals/features/certificates/scene"
)

// modernColorRe matches CSS color functions the rasterizers cannot paint.
var modernColorRe = regexp.MustCompile(`(?i)(^|[^a-z-])(oklch|oklab|lab|lch|hwb|color-mix|color)\(`)

// UsesModernColor reports whether a CSS value contains an unsupported color function.
func UsesModernColor(value string) bool {
	return modernColorRe.MatchString(value)
}

// StyleRule rewrites a declaration to Fallback when Match accepts it.
type StyleRule struct {
	Name     string
	Match    func(prop, value string) bool
	Fallback string
}

// StyleSanitizer applies ordered rules to every element; the first matching rule wins.
type StyleSanitizer struct {
	Rules []StyleRule
}

func DefaultStyleSanitizer() *StyleSanitizer {
	return &StyleSanitizer{Rules: DefaultStyleRules()}
}

func DefaultStyleRules() []StyleRule {
	return []StyleRule{
		{
			Name:     "text-color",
			Match:    modernColorOn("color", "-webkit-text-fill-color", "caret-color", "text-decoration-color", "fill", "stroke"),
			Fallback: "#000000",
		},
		{
			Name:     "background-color",
			Match:    modernColorOn("background-color", "background"),
			Fallback: "#ffffff",
		},
		{
			Name: "border-color",
			Match: func(prop, value string) bool {
				return (strings.HasPrefix(prop, "border") || strings.HasPrefix(prop, "outline")) && UsesModernColor(value)
			},
			Fallback: "transparent",
		},
		{
			Name: "shadow",
			Match: func(prop, value string) bool {
				return strings.HasSuffix(prop, "-shadow") && UsesModernColor(value)
			},
			Fallback: "none",
		},
	}
}

func modernColorOn(props ...string) func(prop, value string) bool {
	set := make(map[string]struct{}, len(props))
	for _, p := range props {
		set[p] = struct{}{}
	}
	return func(prop, value string) bool {
		if _, ok := set[prop]; !ok {
			return false
		}
		return UsesModernColor(value)
	}
}

// Sweep rewrites matching declarations in root and its descendants and returns
// how many were changed.
func (s *StyleSanitizer) Sweep(root *scene.Element) int {
	if s == nil {
		return 0
	}
	changed := 0
	root.Walk(func(el *scene.Element) {
		for prop, value := range el.Style {
			p := strings.ToLower(strings.TrimSpace(prop))
			for _, rule := range s.Rules {
				if rule.Match != nil && rule.Match(p, value) {
					el.Style[prop] = rule.Fallback
					changed++
					break
				}
			}
		}
	})
	return changed
}
