package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"sifs_backend/internals/features/certificates/scene"
)

// ImageSource resolves an img src into pixels.
type ImageSource interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// RasterRenderer paints scene trees in pure Go: a white canvas, the template
// artwork scaled into place and the text overlays on top.
type RasterRenderer struct {
	Images ImageSource
}

func NewRasterRenderer(images ImageSource) *RasterRenderer {
	return &RasterRenderer{Images: images}
}

var (
	fontsOnce sync.Once
	fontsErr  error
	fontReg   *opentype.Font
	fontBold  *opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if fontReg, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		fontBold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

type paintCtx struct {
	ctx    context.Context
	canvas *image.RGBA
	scale  float64
	images ImageSource
	faces  map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

func (r *RasterRenderer) Rasterize(ctx context.Context, node *scene.Element, opt RasterOptions) (image.Image, error) {
	if node == nil {
		return nil, errNothingToExport
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	snap := snapshot(node, opt)
	w, okW := snap.Style.Px("width")
	h, okH := snap.Style.Px("height")
	if !okW || !okH || w <= 0 || h <= 0 {
		return nil, errors.New("certificate node has no pixel size")
	}

	s := opt.scale()
	cw, ch := int(math.Round(w*s)), int(math.Round(h*s))
	canvas := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opt.background()), image.Point{}, draw.Src)
	if c, ok := parseColor(snap.Style.Get("background-color")); ok {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(c), image.Point{}, draw.Over)
	}

	pc := &paintCtx{ctx: ctx, canvas: canvas, scale: s, images: r.Images, faces: map[faceKey]font.Face{}}
	defer pc.closeFaces()

	root := box{W: w, H: h, HasW: true, HasH: true}
	for _, child := range snap.Children {
		if err := pc.paint(child, root); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

func (pc *paintCtx) paint(el *scene.Element, parent box) error {
	if err := pc.ctx.Err(); err != nil {
		return err
	}
	if strings.EqualFold(el.Style.Get("display"), "none") {
		return nil
	}

	switch {
	case el.Tag == "img":
		return pc.paintImage(el, parent)
	case el.Text != "":
		if err := pc.paintText(el, parent); err != nil {
			return err
		}
	default:
		b := resolveBox(el.Style, parent.W, parent.H)
		if !b.HasW {
			b.W = parent.W
		}
		if !b.HasH {
			b.H = parent.H
		}
		b.X += parent.X
		b.Y += parent.Y
		if c, ok := parseColor(el.Style.Get("background-color")); ok && c.A > 0 {
			draw.Draw(pc.canvas, pc.rect(b), image.NewUniform(c), image.Point{}, draw.Over)
		}
		parent = b
	}

	for _, c := range el.Children {
		if err := pc.paint(c, parent); err != nil {
			return err
		}
	}
	return nil
}

func (pc *paintCtx) rect(b box) image.Rectangle {
	s := pc.scale
	return image.Rect(
		int(math.Round(b.X*s)), int(math.Round(b.Y*s)),
		int(math.Round((b.X+b.W)*s)), int(math.Round((b.Y+b.H)*s)),
	)
}

func (pc *paintCtx) paintImage(el *scene.Element, parent box) error {
	if pc.images == nil {
		return &ImageLoadError{Src: el.Src, Err: errors.New("no image source configured")}
	}
	src, err := pc.images.Load(pc.ctx, el.Src)
	if err != nil {
		return err
	}

	b := resolveBox(el.Style, parent.W, parent.H)
	if !b.HasW {
		b.W = parent.W
	}
	if !b.HasH {
		b.H = parent.H
	}
	b.X += parent.X
	b.Y += parent.Y
	dst := pc.rect(b)
	if dst.Empty() {
		return nil
	}

	if strings.EqualFold(el.Style.Get("object-fit"), "cover") {
		filled := imaging.Fill(src, dst.Dx(), dst.Dy(), imaging.Center, imaging.CatmullRom)
		draw.Draw(pc.canvas, dst, filled, image.Point{}, draw.Over)
		return nil
	}
	draw.CatmullRom.Scale(pc.canvas, dst, src, src.Bounds(), draw.Over, nil)
	return nil
}

func (pc *paintCtx) face(bold bool, size float64) (font.Face, error) {
	key := faceKey{bold: bold, size: size}
	if f, ok := pc.faces[key]; ok {
		return f, nil
	}
	src := fontReg
	if bold {
		src = fontBold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	pc.faces[key] = f
	return f, nil
}

func (pc *paintCtx) closeFaces() {
	for _, f := range pc.faces {
		_ = f.Close()
	}
}

func (pc *paintCtx) paintText(el *scene.Element, parent box) error {
	st := el.Style
	s := pc.scale

	sizePx, ok := st.Px("font-size")
	if !ok || sizePx <= 0 {
		sizePx = 16
	}
	face, err := pc.face(isBold(st.Get("font-weight")), sizePx*s)
	if err != nil {
		return fmt.Errorf("font face: %w", err)
	}

	text := el.Text
	textW := float64(font.MeasureString(face, text)) / 64
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64

	// horizontal position in canvas pixels
	var x float64
	if l, ok := length(st, "left", parent.W); ok {
		x = (parent.X + l) * s
		if strings.Contains(st.Get("transform"), "translateX(-50%)") {
			x -= textW / 2
		}
	} else if r, ok := length(st, "right", parent.W); ok {
		x = (parent.X+parent.W-r)*s - textW
	} else {
		x = parent.X * s
	}

	// baseline
	var y float64
	if t, ok := length(st, "top", parent.H); ok {
		y = (parent.Y+t)*s + ascent
	} else if b, ok := length(st, "bottom", parent.H); ok {
		y = (parent.Y+parent.H-b)*s - descent
	} else {
		y = parent.Y*s + ascent
	}

	col, ok := parseColor(st.Get("color"))
	if !ok {
		col = color.NRGBA{A: 255}
	}

	if sh, ok := parseTextShadow(st.Get("text-shadow")); ok {
		pc.paintShadow(face, text, x+sh.DX*s, y+sh.DY*s, textW, ascent, descent, sh.Blur*s, sh.Color)
	}

	d := &font.Drawer{Dst: pc.canvas, Src: image.NewUniform(col), Face: face, Dot: fixed.P(int(math.Round(x)), int(math.Round(y)))}
	d.DrawString(text)

	if strings.Contains(st.Get("text-decoration"), "underline") {
		thick := math.Max(1, sizePx*s/18)
		top := y + sizePx*s*0.12
		r := image.Rect(int(math.Round(x)), int(math.Round(top)), int(math.Round(x+textW)), int(math.Round(top+thick)))
		draw.Draw(pc.canvas, r, image.NewUniform(col), image.Point{}, draw.Over)
	}
	return nil
}

func isBold(weight string) bool {
	if strings.EqualFold(weight, "bold") || strings.EqualFold(weight, "bolder") {
		return true
	}
	n, err := strconv.Atoi(weight)
	return err == nil && n >= 600
}

// paintShadow draws the text on its own layer, blurs it and composites it under the glyphs.
func (pc *paintCtx) paintShadow(face font.Face, text string, x, y, textW, ascent, descent, blur float64, col color.NRGBA) {
	pad := int(math.Ceil(blur*2)) + 2
	lw := int(math.Ceil(textW)) + pad*2
	lh := int(math.Ceil(ascent+descent)) + pad*2
	layer := image.NewNRGBA(image.Rect(0, 0, lw, lh))

	d := &font.Drawer{Dst: layer, Src: image.NewUniform(col), Face: face, Dot: fixed.P(pad, pad+int(math.Round(ascent)))}
	d.DrawString(text)

	var shadow image.Image = layer
	if blur > 0 {
		shadow = imaging.Blur(layer, blur/2)
	}
	origin := image.Pt(int(math.Round(x))-pad, int(math.Round(y-ascent))-pad)
	draw.Draw(pc.canvas, shadow.Bounds().Add(origin), shadow, image.Point{}, draw.Over)
}
