package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/chai2010/webp"

	imgsvc "sifs_backend/internals/features/certificates/imageproxy/service"
	"sifs_backend/internals/features/certificates/verification/model"
)

var errRelativeWithoutOrigin = errors.New("relative image url needs PUBLIC_ORIGIN")

type LoaderOptions struct {
	Fetcher      *imgsvc.Fetcher
	Relay        *imgsvc.Relay
	PublicOrigin string
	// HTTPClient is used for same-origin assets, which bypass the relay host allowlist.
	HTTPClient *http.Client
}

// ImageLoader resolves template sources the same way the preview does:
// data URLs, the built-in quiz placeholder, relayed URLs, absolute URLs and
// paths relative to the public origin.
type ImageLoader struct {
	remote *imgsvc.Fetcher
	local  *imgsvc.Fetcher
	relay  *imgsvc.Relay
	origin *url.URL
}

func NewImageLoader(opt LoaderOptions) *ImageLoader {
	l := &ImageLoader{remote: opt.Fetcher, relay: opt.Relay}
	if l.remote == nil {
		l.remote = imgsvc.NewFetcher(imgsvc.FetcherConfig{}, opt.HTTPClient)
	}
	if l.relay == nil {
		l.relay = imgsvc.NewRelay("", opt.PublicOrigin)
	}
	if o := strings.TrimSpace(opt.PublicOrigin); o != "" {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			l.origin = u
			l.local = imgsvc.NewFetcher(imgsvc.FetcherConfig{AllowedHosts: []string{u.Hostname()}}, opt.HTTPClient)
		}
	}
	return l
}

// Fetch returns the raw bytes and content type behind src.
func (l *ImageLoader) Fetch(ctx context.Context, src string) (*imgsvc.Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, &ImageLoadError{Src: src, Err: errors.New("empty image source")}
	}
	if strings.HasPrefix(strings.ToLower(src), "data:") {
		img, err := parseDataURL(src)
		if err != nil {
			return nil, &ImageLoadError{Src: shorten(src), Err: err}
		}
		return img, nil
	}
	if inner, ok := l.relay.Unwrap(src); ok {
		return l.fetchRemote(ctx, src, inner)
	}

	u, err := url.Parse(src)
	if err != nil {
		return nil, &ImageLoadError{Src: src, Err: err}
	}
	if (u.Scheme == "" && u.Host == "") || l.sameOrigin(u) {
		if path.Clean(u.Path) == model.PlaceholderImageURL {
			data, err := QuizPlaceholderPNG()
			if err != nil {
				return nil, &ImageLoadError{Src: src, Err: err}
			}
			return &imgsvc.Image{Data: data, ContentType: "image/png"}, nil
		}
		if l.origin == nil {
			return nil, &ImageLoadError{Src: src, Err: errRelativeWithoutOrigin}
		}
		img, err := l.local.Fetch(ctx, l.origin.ResolveReference(u).String())
		if err != nil {
			return nil, &ImageLoadError{Src: src, Err: err}
		}
		return img, nil
	}
	if strings.HasPrefix(src, "//") {
		return l.fetchRemote(ctx, src, "https:"+src)
	}
	return l.fetchRemote(ctx, src, src)
}

func (l *ImageLoader) fetchRemote(ctx context.Context, src, target string) (*imgsvc.Image, error) {
	img, err := l.remote.Fetch(ctx, target)
	if err != nil {
		return nil, &ImageLoadError{Src: src, Err: err}
	}
	return img, nil
}

// Load fetches and decodes src.
func (l *ImageLoader) Load(ctx context.Context, src string) (image.Image, error) {
	raw, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	img, err := decodeImage(raw.Data, raw.ContentType)
	if err != nil {
		return nil, &ImageLoadError{Src: shorten(src), Err: err}
	}
	return img, nil
}

// Probe loads src and discards the pixels; it backs the preview's image_error flag.
func (l *ImageLoader) Probe(ctx context.Context, src string) error {
	_, err := l.Load(ctx, src)
	return err
}

func (l *ImageLoader) sameOrigin(u *url.URL) bool {
	return l.origin != nil && u.IsAbs() &&
		strings.EqualFold(u.Scheme, l.origin.Scheme) && strings.EqualFold(u.Host, l.origin.Host)
}

/* =======================================================================
   Decode (jpeg/png/webp) with MIME sniffing
======================================================================= */

func decodeImage(all []byte, contentType string) (image.Image, error) {
	if len(all) == 0 {
		return nil, errors.New("empty image")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	if !strings.HasPrefix(ct, "image/") {
		ct = strings.ToLower(contentType)
	}

	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "png"):
		return png.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(all))
	default:
		return nil, fmt.Errorf("unsupported image format: %s", ct)
	}
}

func parseDataURL(src string) (*imgsvc.Image, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, errors.New("malformed data url")
	}
	meta, payload := src[len("data:"):comma], src[comma+1:]

	ct := meta
	isB64 := strings.HasSuffix(strings.ToLower(meta), ";base64")
	if isB64 {
		ct = meta[:len(meta)-len(";base64")]
	}

	var data []byte
	if isB64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		data = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		data = []byte(s)
	}
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &imgsvc.Image{Data: data, ContentType: ct}, nil
}

// DataURL encodes raw bytes for inlining into a standalone document.
func DataURL(img *imgsvc.Image) string {
	return "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func shorten(s string) string {
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
