package service

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"sifs_backend/internals/features/certificates/scene"
)

func px(n int) string { return strconv.Itoa(n) + "px" }

var namedColors = map[string]color.NRGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"transparent": {0, 0, 0, 0},
	"red":         {255, 0, 0, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
}

// parseColor understands hex, rgb()/rgba() and a few names. Anything else is rejected.
func parseColor(v string) (color.NRGBA, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if strings.HasPrefix(v, "#") {
		return parseHex(v[1:])
	}
	if strings.HasPrefix(v, "rgb") {
		open, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
		if open < 0 || end < open {
			return color.NRGBA{}, false
		}
		parts := strings.FieldsFunc(v[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
		if len(parts) < 3 {
			return color.NRGBA{}, false
		}
		var ch [3]uint8
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(parts[i], 64)
			if err != nil {
				return color.NRGBA{}, false
			}
			ch[i] = clamp8(f)
		}
		a := uint8(255)
		if len(parts) > 3 {
			s := parts[3]
			f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
			if err != nil {
				return color.NRGBA{}, false
			}
			if strings.HasSuffix(s, "%") {
				f /= 100
			}
			a = clamp8(f * 255)
		}
		return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, true
	}
	return color.NRGBA{}, false
}

func parseHex(h string) (color.NRGBA, bool) {
	if len(h) == 3 || len(h) == 4 {
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	}
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	if len(h) == 6 {
		return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, true
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, true
}

func clamp8(f float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(f))))
}

type textShadow struct {
	DX, DY, Blur float64
	Color        color.NRGBA
}

// parseTextShadow reads "<dx> <dy> [<blur>] <color>" (first shadow only).
func parseTextShadow(v string) (textShadow, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "none") {
		return textShadow{}, false
	}
	colorStart := strings.IndexAny(v, "#r")
	if colorStart <= 0 {
		return textShadow{}, false
	}
	c, ok := parseColor(strings.TrimRight(strings.TrimSpace(v[colorStart:]), ","))
	if !ok {
		return textShadow{}, false
	}
	var nums []float64
	for _, f := range strings.Fields(v[:colorStart]) {
		n, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64)
		if err != nil {
			return textShadow{}, false
		}
		nums = append(nums, n)
	}
	if len(nums) < 2 {
		return textShadow{}, false
	}
	s := textShadow{DX: nums[0], DY: nums[1], Color: c}
	if len(nums) > 2 {
		s.Blur = nums[2]
	}
	return s, true
}

type box struct {
	X, Y, W, H float64
	HasW, HasH bool
}

func length(st scene.Style, prop string, ref float64) (float64, bool) {
	if p, ok := st.Percent(prop); ok {
		return p / 100 * ref, true
	}
	return st.Px(prop)
}

// resolveBox places an element inside a parent of size pw×ph from its
// px or % offsets and size.
func resolveBox(st scene.Style, pw, ph float64) box {
	var b box
	b.W, b.HasW = length(st, "width", pw)
	b.H, b.HasH = length(st, "height", ph)
	if l, ok := length(st, "left", pw); ok {
		b.X = l
	} else if r, ok := length(st, "right", pw); ok && b.HasW {
		b.X = pw - r - b.W
	}
	if t, ok := length(st, "top", ph); ok {
		b.Y = t
	} else if bt, ok := length(st, "bottom", ph); ok && b.HasH {
		b.Y = ph - bt - b.H
	}
	return b
}
