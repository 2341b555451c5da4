package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sifs_backend/internals/features/certificates/scene"
	"sifs_backend/internals/features/certificates/verification/model"
)

func countPixels(img image.Image, r image.Rectangle, pred func(r, g, b uint32) bool) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if pred(cr>>8, cg>>8, cb>>8) {
				n++
			}
		}
	}
	return n
}

func TestRasterRendererPaintsTemplateAndText(t *testing.T) {
	v := verification(model.OrientationHorizontal, solidPNG(t, 8, 8, color.RGBA{R: 200, A: 255}))
	node := loadedScene(v, 1)

	img, err := NewRasterRenderer(NewImageLoader(LoaderOptions{})).Rasterize(context.Background(), node, RasterOptions{Scale: 1})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1123, 794), img.Bounds())

	red := func(r, g, b uint32) bool { return r > 180 && g < 30 && b < 30 }
	white := func(r, g, b uint32) bool { return r > 235 && g > 235 && b > 235 }
	dark := func(r, g, b uint32) bool { return r < 40 && g < 40 && b < 40 }

	// template fills the corner
	assert.Equal(t, 100, countPixels(img, image.Rect(0, 0, 10, 10), red))
	// white name around 24% from the top, centered
	assert.Positive(t, countPixels(img, image.Rect(400, 185, 723, 245), white))
	// black number near the bottom
	assert.Positive(t, countPixels(img, image.Rect(450, 660, 673, 715), dark))
}

func TestRasterRendererUnderlinesQuizName(t *testing.T) {
	v := verification(model.OrientationHorizontal, solidPNG(t, 4, 4, color.White))
	v.Certificate.CertificateType = model.CertificateTypeQuiz
	node := loadedScene(v, 1)

	img, err := NewRasterRenderer(NewImageLoader(LoaderOptions{})).Rasterize(context.Background(), node, RasterOptions{Scale: 1})
	require.NoError(t, err)

	dark := func(r, g, b uint32) bool { return r < 80 && g < 80 && b < 90 }
	assert.Positive(t, countPixels(img, image.Rect(300, 340, 823, 400), dark))
}

func TestRasterRendererImageFailure(t *testing.T) {
	v := verification(model.OrientationHorizontal, "data:image/png;base64,bm90IGFuIGltYWdl")
	_, err := NewRasterRenderer(NewImageLoader(LoaderOptions{})).Rasterize(context.Background(), loadedScene(v, 1), RasterOptions{Scale: 1})

	var le *ImageLoadError
	assert.ErrorAs(t, err, &le)
}

func TestRasterRendererNeedsSize(t *testing.T) {
	_, err := NewRasterRenderer(nil).Rasterize(context.Background(), &scene.Element{Tag: "div"}, RasterOptions{})
	assert.Error(t, err)
}

func TestRasterRendererHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := verification(model.OrientationHorizontal, "data:,x")
	_, err := NewRasterRenderer(nil).Rasterize(ctx, loadedScene(v, 1), RasterOptions{Scale: 1})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#fff":               {255, 255, 255, 255},
		"#1a1a1a":            {26, 26, 26, 255},
		"#00000080":          {0, 0, 0, 128},
		"rgb(10, 20, 30)":    {10, 20, 30, 255},
		"rgba(0, 0, 0, 0.6)": {0, 0, 0, 153},
		"rgb(255 0 0 / 50%)": {255, 0, 0, 128},
		"transparent":        {0, 0, 0, 0},
		"  BLACK ":           {0, 0, 0, 255},
	}
	for in, want := range cases {
		got, ok := parseColor(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "oklch(0.5 0.1 20)", "#12", "rgb(1,2)"} {
		_, ok := parseColor(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseTextShadow(t *testing.T) {
	sh, ok := parseTextShadow("2px 2px 4px rgba(0, 0, 0, 0.6)")
	require.True(t, ok)
	assert.Equal(t, 2.0, sh.DX)
	assert.Equal(t, 2.0, sh.DY)
	assert.Equal(t, 4.0, sh.Blur)
	assert.Equal(t, uint8(153), sh.Color.A)

	_, ok = parseTextShadow("none")
	assert.False(t, ok)
}
