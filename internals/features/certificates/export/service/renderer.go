package service

import (
	"context"
	"image"
	"image/color"

	"sifs_backend/internals/features/certificates/scene"
)

// ExportScale is the supersampling factor used for print-quality output.
const ExportScale = 3

type RasterOptions struct {
	Scale      float64
	Background color.Color
	UseCORS    bool
	// OnClone runs on the rasterizer's own snapshot before anything is painted.
	OnClone func(*scene.Element)
}

// Rasterizer paints a scene tree into a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, node *scene.Element, opt RasterOptions) (image.Image, error)
}

type Blob struct {
	Data []byte
	MIME string
}

// Downloader hands the finished file to whoever asked for it.
type Downloader interface {
	TriggerDownload(ctx context.Context, blob Blob, filename string) error
}

// DownloaderFunc adapts a plain function to Downloader.
type DownloaderFunc func(ctx context.Context, blob Blob, filename string) error

func (f DownloaderFunc) TriggerDownload(ctx context.Context, blob Blob, filename string) error {
	return f(ctx, blob, filename)
}

// Renderer bundles both capabilities the export pipeline needs.
type Renderer struct {
	Rasterizer
	Downloader
}

// snapshot clones node and runs OnClone on the copy.
func snapshot(node *scene.Element, opt RasterOptions) *scene.Element {
	snap := node.Clone()
	if opt.OnClone != nil {
		opt.OnClone(snap)
	}
	return snap
}

func (o RasterOptions) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

func (o RasterOptions) background() color.Color {
	if o.Background == nil {
		return color.White
	}
	return o.Background
}
