package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/disintegration/imaging"

	"sifs_backend/internals/features/certificates/verification/model"
)

var (
	placeholderOnce sync.Once
	placeholderPNG  []byte
	placeholderErr  error
)

// QuizPlaceholder draws the framed landscape artwork used for quiz
// certificates that come without a template.
func QuizPlaceholder() image.Image {
	w, h := model.OrientationHorizontal.NativeSize()

	paper := color.NRGBA{R: 0xfd, G: 0xfa, B: 0xf3, A: 0xff}
	gold := color.NRGBA{R: 0xb8, G: 0x8a, B: 0x2e, A: 0xff}
	navy := color.NRGBA{R: 0x1e, G: 0x3a, B: 0x5f, A: 0xff}

	canvas := imaging.New(w, h, navy)
	canvas = imaging.Paste(canvas, imaging.New(w-36, h-36, gold), image.Pt(18, 18))
	canvas = imaging.Paste(canvas, imaging.New(w-48, h-48, paper), image.Pt(24, 24))
	canvas = imaging.Paste(canvas, imaging.New(w-96, 4, gold), image.Pt(48, 120))
	canvas = imaging.Paste(canvas, imaging.New(w-96, 4, gold), image.Pt(48, h-124))
	canvas = imaging.Paste(canvas, imaging.New(160, 160, navy), image.Pt(w/2-80, 150))
	canvas = imaging.Paste(canvas, imaging.New(140, 140, paper), image.Pt(w/2-70, 160))
	return canvas
}

// QuizPlaceholderPNG is QuizPlaceholder encoded once and cached.
func QuizPlaceholderPNG() ([]byte, error) {
	placeholderOnce.Do(func() {
		var buf bytes.Buffer
		if placeholderErr = png.Encode(&buf, QuizPlaceholder()); placeholderErr == nil {
			placeholderPNG = buf.Bytes()
		}
	})
	return placeholderPNG, placeholderErr
}
