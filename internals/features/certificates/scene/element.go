package scene

import (
	"sort"
	"strconv"
	"strings"
)

// Roles used by the certificate scene.
const (
	RoleCertificate = "certificate"
	RoleTemplate    = "template"
	RoleName        = "name"
	RoleNumber      = "number"
	RoleDate        = "date"
	RoleQR          = "qr"
)

// Style holds computed CSS declarations, property → value.
type Style map[string]string

func (s Style) Get(prop string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s[prop])
}

// Px parses values like "794px" or "794".
func (s Style) Px(prop string) (float64, bool) {
	v := strings.TrimSuffix(s.Get(prop), "px")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f, err == nil
}

// Percent parses values like "24%".
func (s Style) Percent(prop string) (float64, bool) {
	v := s.Get(prop)
	if !strings.HasSuffix(v, "%") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
	return f, err == nil
}

// CSS renders the declarations sorted by property name.
func (s Style) CSS() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(s[k])
		b.WriteByte(';')
	}
	return b.String()
}

type Element struct {
	ID       string     `json:"id,omitempty"`
	Tag      string     `json:"tag"`
	Role     string     `json:"role,omitempty"`
	Text     string     `json:"text,omitempty"`
	Src      string     `json:"src,omitempty"`
	Style    Style      `json:"style,omitempty"`
	Children []*Element `json:"children,omitempty"`
}

func (e *Element) SetStyle(prop, value string) {
	if e.Style == nil {
		e.Style = Style{}
	}
	e.Style[prop] = value
}

func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// Clone returns a deep copy; mutating the copy never touches e.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{ID: e.ID, Tag: e.Tag, Role: e.Role, Text: e.Text, Src: e.Src}
	if e.Style != nil {
		out.Style = make(Style, len(e.Style))
		for k, v := range e.Style {
			out.Style[k] = v
		}
	}
	if len(e.Children) > 0 {
		out.Children = make([]*Element, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Walk visits e and its descendants depth-first, parents before children.
func (e *Element) Walk(fn func(*Element)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Find returns the first element with the given role.
func (e *Element) Find(role string) *Element {
	var found *Element
	e.Walk(func(el *Element) {
		if found == nil && el.Role == role {
			found = el
		}
	})
	return found
}
