package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"time"

	"go.uber.org/zap"

	"sifs_backend/internals/features/certificates/scene"
	"sifs_backend/internals/features/certificates/verification/model"
)

const DefaultSettleDelay = 300 * time.Millisecond

var errNothingToExport = errors.New("no certificate node to export")

type ExporterOptions struct {
	Rasterizer  Rasterizer
	Downloader  Downloader
	Sanitizer   *StyleSanitizer
	Stage       *Stage
	SettleDelay time.Duration
	QR          *QRStamper
	Logger      *zap.Logger
}

// Exporter turns an on-screen certificate node into a downloadable PNG
// without ever mutating the node it was given.
type Exporter struct {
	renderer  Renderer
	sanitizer *StyleSanitizer
	stage     *Stage
	settle    time.Duration
	qr        *QRStamper
	log       *zap.Logger
}

func NewExporter(opt ExporterOptions) *Exporter {
	if opt.Sanitizer == nil {
		opt.Sanitizer = DefaultStyleSanitizer()
	}
	if opt.Stage == nil {
		opt.Stage = NewStage()
	}
	if opt.SettleDelay < 0 {
		opt.SettleDelay = 0
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return &Exporter{
		renderer:  Renderer{Rasterizer: opt.Rasterizer, Downloader: opt.Downloader},
		sanitizer: opt.Sanitizer,
		stage:     opt.Stage,
		settle:    opt.SettleDelay,
		qr:        opt.QR,
		log:       opt.Logger,
	}
}

// WithDownloader returns a copy that delivers through dl and shares everything else.
func (e *Exporter) WithDownloader(dl Downloader) *Exporter {
	cp := *e
	cp.renderer.Downloader = dl
	return &cp
}

func (e *Exporter) Stage() *Stage { return e.stage }

// ExportPNG renders node at native size, supersampled, and triggers the download
// of "SIFS_Certificate_<number>.png". Any failure is an *ExportError.
func (e *Exporter) ExportPNG(ctx context.Context, node *scene.Element, tpl model.TemplateDescriptor, certificateNumber string) error {
	if node == nil {
		return exportErr("prepare", errNothingToExport)
	}
	if e.renderer.Rasterizer == nil || e.renderer.Downloader == nil {
		return exportErr("prepare", errors.New("renderer is not configured"))
	}

	clone := node.Clone()
	id := e.stage.Attach(clone)
	defer e.stage.Detach(id)

	forceNativeSize(clone, tpl.Orientation)
	if n := e.sanitizer.Sweep(clone); n > 0 {
		e.log.Debug("sanitized export styles", zap.Int("declarations", n))
	}

	if err := sleepCtx(ctx, e.settle); err != nil {
		return exportErr("settle", err)
	}

	img, err := e.renderer.Rasterize(ctx, clone, RasterOptions{
		Scale:      ExportScale,
		Background: color.White,
		UseCORS:    true,
		OnClone:    func(snap *scene.Element) { e.sanitizer.Sweep(snap) },
	})
	if err != nil {
		return exportErr("rasterize", err)
	}

	if e.qr != nil {
		if img, err = e.qr.Stamp(img, certificateNumber); err != nil {
			return exportErr("qr", err)
		}
	}

	blob, err := encodePNG(img)
	if err != nil {
		return exportErr("encode", err)
	}

	filename := CertificateFileName(certificateNumber)
	if err := e.renderer.TriggerDownload(ctx, blob, filename); err != nil {
		return exportErr("download", err)
	}

	e.log.Info("certificate exported",
		zap.String("certificate_number", strings.TrimSpace(certificateNumber)),
		zap.String("filename", filename),
		zap.Int("bytes", len(blob.Data)),
	)
	return nil
}

// forceNativeSize pins the clone to its unscaled A4 size, off-screen and opaque.
func forceNativeSize(n *scene.Element, o model.Orientation) {
	w, h := o.NativeSize()
	n.SetStyle("width", px(w))
	n.SetStyle("height", px(h))
	n.SetStyle("position", "fixed")
	n.SetStyle("left", "-10000px")
	n.SetStyle("top", "0")
	n.SetStyle("transform", "none")
	n.SetStyle("opacity", "1")
}

func encodePNG(img image.Image) (Blob, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Blob{}, err
	}
	return Blob{Data: buf.Bytes(), MIME: "image/png"}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
