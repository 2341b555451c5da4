package service

import (
	"fmt"
	"image"
	"math"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrWidthRatio = 0.10
	qrInsetRatio = 0.03
)

// QRStamper prints a download QR in the top-right corner of exported certificates.
type QRStamper struct {
	origin string
}

func NewQRStamper(publicOrigin string) *QRStamper {
	return &QRStamper{origin: strings.TrimRight(strings.TrimSpace(publicOrigin), "/")}
}

// Payload is the link the QR encodes for a certificate number.
func (q *QRStamper) Payload(certificateNumber string) string {
	return q.origin + "/certificate-download?cert_no=" + url.QueryEscape(strings.TrimSpace(certificateNumber))
}

func (q *QRStamper) Stamp(img image.Image, certificateNumber string) (image.Image, error) {
	code, err := qrcode.New(q.Payload(certificateNumber), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	b := img.Bounds()
	size := int(math.Round(float64(b.Dx()) * qrWidthRatio))
	if size < 21 {
		return img, nil
	}
	inset := int(math.Round(float64(b.Dx()) * qrInsetRatio))

	mark := code.Image(size)
	pos := image.Pt(b.Max.X-inset-mark.Bounds().Dx(), b.Min.Y+inset)
	return imaging.Overlay(img, mark, pos, 1.0), nil
}
