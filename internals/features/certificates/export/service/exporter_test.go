package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	layout "sifs_backend/internals/features/certificates/layout/service"
	"sifs_backend/internals/features/certificates/scene"
	"sifs_backend/internals/features/certificates/verification/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func solidPNG(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func loadedScene(v model.Verification, scale float64) *scene.Element {
	view := layout.NewViewState(scale)
	view.ImageLoaded()
	return layout.BuildScene(v, view).Root
}

func verification(o model.Orientation, src string) model.Verification {
	return model.Verification{
		Certificate: model.CertificateRecord{
			Name:              "Jane Doe",
			CertificateNumber: "SIFS/2025/001",
			CertificateType:   model.CertificateTypeStandard,
		},
		Template: model.TemplateDescriptor{Name: "Event", ImageURL: src, Orientation: o},
	}
}

// fakeRasterizer records what it was asked to paint.
type fakeRasterizer struct {
	err        error
	stage      *Stage
	width      float64
	height     float64
	scale      float64
	bg         color.Color
	stageLen   int
	transform  string
	modernSeen bool
}

func (f *fakeRasterizer) Rasterize(_ context.Context, node *scene.Element, opt RasterOptions) (image.Image, error) {
	if f.stage != nil {
		f.stageLen = f.stage.Len()
	}
	snap := snapshot(node, opt)
	f.width, _ = snap.Style.Px("width")
	f.height, _ = snap.Style.Px("height")
	f.transform = snap.Style.Get("transform")
	f.scale = opt.Scale
	f.bg = opt.Background
	snap.Walk(func(el *scene.Element) {
		for _, v := range el.Style {
			if UsesModernColor(v) {
				f.modernSeen = true
			}
		}
	})
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, int(f.width*opt.Scale), int(f.height*opt.Scale))), nil
}

type captureDownloader struct {
	err      error
	blob     Blob
	filename string
	calls    int
}

func (c *captureDownloader) TriggerDownload(_ context.Context, blob Blob, filename string) error {
	c.calls++
	c.blob, c.filename = blob, filename
	return c.err
}

func newTestExporter(r Rasterizer, d Downloader, stage *Stage) *Exporter {
	return NewExporter(ExporterOptions{Rasterizer: r, Downloader: d, Stage: stage, SettleDelay: time.Millisecond})
}

func TestExportVerticalIgnoresOnScreenScale(t *testing.T) {
	stage := NewStage()
	r := &fakeRasterizer{stage: stage}
	d := &captureDownloader{}
	exp := newTestExporter(r, d, stage)

	v := verification(model.OrientationVertical, "data:,x")
	node := loadedScene(v, 0.4)

	require.NoError(t, exp.ExportPNG(context.Background(), node, v.Template, v.Certificate.CertificateNumber))

	assert.Equal(t, 794.0, r.width)
	assert.Equal(t, 1123.0, r.height)
	assert.Equal(t, "none", r.transform)
	assert.Equal(t, float64(ExportScale), r.scale)
	assert.Equal(t, color.White, r.bg)

	cfg, err := png.DecodeConfig(bytes.NewReader(d.blob.Data))
	require.NoError(t, err)
	assert.Equal(t, 2382, cfg.Width)
	assert.Equal(t, 3369, cfg.Height)
	assert.Equal(t, "image/png", d.blob.MIME)
	assert.Equal(t, "SIFS_Certificate_SIFS-2025-001.png", d.filename)
}

func TestExportLeavesSourceNodeUntouched(t *testing.T) {
	exp := newTestExporter(&fakeRasterizer{}, &captureDownloader{}, nil)
	v := verification(model.OrientationHorizontal, "data:,x")
	node := loadedScene(v, 0.5)
	node.Find(scene.RoleName).SetStyle("color", "oklch(0.7 0.1 200)")
	before := node.Clone()

	require.NoError(t, exp.ExportPNG(context.Background(), node, v.Template, "A1"))
	assert.Equal(t, before, node)
}

func TestExportCleansUpStage(t *testing.T) {
	v := verification(model.OrientationHorizontal, "data:,x")

	cases := []struct {
		name    string
		rastErr error
		dlErr   error
		wantErr bool
	}{
		{name: "success"},
		{name: "rasterize fails", rastErr: errors.New("canvas tainted"), wantErr: true},
		{name: "download fails", dlErr: errors.New("disk full"), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stage := NewStage()
			r := &fakeRasterizer{stage: stage, err: tc.rastErr}
			exp := newTestExporter(r, &captureDownloader{err: tc.dlErr}, stage)

			require.Equal(t, 0, stage.Len())
			err := exp.ExportPNG(context.Background(), loadedScene(v, 0.5), v.Template, "A1")
			assert.Equal(t, 1, r.stageLen, "clone is attached while rasterizing")
			assert.Equal(t, 0, stage.Len())

			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			var ee *ExportError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, ExportFailedMessage, ee.UserMessage())
			assert.Contains(t, ee.UserMessage(), "color functions")
		})
	}
}

func TestExportSanitizesBeforeAndInsideRasterizer(t *testing.T) {
	r := &fakeRasterizer{}
	exp := newTestExporter(r, &captureDownloader{}, nil)
	v := verification(model.OrientationHorizontal, "data:,x")
	node := loadedScene(v, 1)
	node.SetStyle("background-color", "lab(50% 40 59)")
	node.Find(scene.RoleNumber).SetStyle("color", "color-mix(in srgb, red, blue)")

	require.NoError(t, exp.ExportPNG(context.Background(), node, v.Template, "A1"))
	assert.False(t, r.modernSeen)
}

func TestExportCancelledDuringSettle(t *testing.T) {
	stage := NewStage()
	d := &captureDownloader{}
	exp := NewExporter(ExporterOptions{Rasterizer: &fakeRasterizer{}, Downloader: d, Stage: stage, SettleDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := verification(model.OrientationHorizontal, "data:,x")
	err := exp.ExportPNG(ctx, loadedScene(v, 1), v.Template, "A1")

	var ee *ExportError
	require.ErrorAs(t, err, &ee)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "settle", ee.Step)
	assert.Equal(t, 0, d.calls)
	assert.Equal(t, 0, stage.Len())
}

func TestExportNilNode(t *testing.T) {
	exp := newTestExporter(&fakeRasterizer{}, &captureDownloader{}, nil)
	var ee *ExportError
	assert.ErrorAs(t, exp.ExportPNG(context.Background(), nil, model.DefaultQuizTemplate(), "A1"), &ee)
}

func TestWithDownloaderSharesStage(t *testing.T) {
	base := newTestExporter(&fakeRasterizer{}, nil, nil)
	d := &captureDownloader{}
	bound := base.WithDownloader(d)

	v := verification(model.OrientationHorizontal, "data:,x")
	require.NoError(t, bound.ExportPNG(context.Background(), loadedScene(v, 1), v.Template, "A1"))
	assert.Equal(t, 1, d.calls)
	assert.Same(t, base.Stage(), bound.Stage())

	var ee *ExportError
	assert.ErrorAs(t, base.ExportPNG(context.Background(), loadedScene(v, 1), v.Template, "A1"), &ee)
}

func TestScenarioAEndToEndRaster(t *testing.T) {
	v := verification(model.OrientationHorizontal, solidPNG(t, 16, 12, color.RGBA{R: 200, A: 255}))
	d := &captureDownloader{}
	loader := NewImageLoader(LoaderOptions{})
	exp := newTestExporter(NewRasterRenderer(loader), d, nil)

	require.NoError(t, exp.ExportPNG(context.Background(), loadedScene(v, 0.3), v.Template, v.Certificate.CertificateNumber))

	assert.Equal(t, "SIFS_Certificate_SIFS-2025-001.png", d.filename)
	cfg, err := png.DecodeConfig(bytes.NewReader(d.blob.Data))
	require.NoError(t, err)
	assert.Equal(t, 3369, cfg.Width)
	assert.Equal(t, 2382, cfg.Height)
}
