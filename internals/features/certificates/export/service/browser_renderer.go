package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	imgsvc "sifs_backend/internals/features/certificates/imageproxy/service"
	"sifs_backend/internals/features/certificates/scene"
)

// ImageFetcher returns raw image bytes for inlining.
type ImageFetcher interface {
	Fetch(ctx context.Context, src string) (*imgsvc.Image, error)
}

// BrowserRenderer snapshots the scene in headless Chrome. One page at a time
// is rendered on a shared browser.
type BrowserRenderer struct {
	images ImageFetcher
	bin    string
	log    *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserRenderer uses the Chrome at bin, or downloads/locates one when bin is empty.
func NewBrowserRenderer(images ImageFetcher, bin string, logger *zap.Logger) *BrowserRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserRenderer{images: images, bin: bin, log: logger}
}

func (b *BrowserRenderer) connectLocked() error {
	if b.browser != nil {
		if _, err := b.browser.Version(); err == nil {
			return nil
		}
		b.log.Warn("stale chrome connection, reconnecting")
		_ = b.browser.Close()
		b.browser = nil
	}

	l := launcher.New().Headless(true)
	if b.bin != "" {
		l = l.Bin(b.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}
	br := rod.New().ControlURL(controlURL)
	if err := br.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	b.browser = br
	b.log.Info("headless chrome connected")
	return nil
}

// browserPage is the standalone document Chrome loads, with its CSS pixel viewport.
type browserPage struct {
	HTML   string
	Width  int
	Height int
}

// preparePage snapshots node, pins it to the document origin and inlines every
// image as a data URL so the page never touches the network.
func (b *BrowserRenderer) preparePage(ctx context.Context, node *scene.Element, opt RasterOptions) (*browserPage, error) {
	if node == nil {
		return nil, errNothingToExport
	}
	snap := snapshot(node, opt)
	w, okW := snap.Style.Px("width")
	h, okH := snap.Style.Px("height")
	if !okW || !okH || w <= 0 || h <= 0 {
		return nil, errors.New("certificate node has no pixel size")
	}

	snap.SetStyle("position", "absolute")
	snap.SetStyle("left", "0")
	snap.SetStyle("top", "0")

	var inlineErr error
	snap.Walk(func(el *scene.Element) {
		if inlineErr != nil || el.Tag != "img" || el.Src == "" {
			return
		}
		raw, err := b.images.Fetch(ctx, el.Src)
		if err != nil {
			inlineErr = err
			return
		}
		el.Src = DataURL(raw)
	})
	if inlineErr != nil {
		return nil, inlineErr
	}
	return &browserPage{
		HTML:   scene.RenderHTML(snap),
		Width:  int(math.Round(w)),
		Height: int(math.Round(h)),
	}, nil
}

func (b *BrowserRenderer) Rasterize(ctx context.Context, node *scene.Element, opt RasterOptions) (image.Image, error) {
	doc, err := b.preparePage(ctx, node, opt)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.connectLocked(); err != nil {
		return nil, err
	}

	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             doc.Width,
		Height:            doc.Height,
		DeviceScaleFactor: opt.scale(),
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(doc.HTML); err != nil {
		return nil, fmt.Errorf("set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	shot, err := page.Screenshot(false, &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

func (b *BrowserRenderer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}
