package controller

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"sifs_backend/internals/features/certificates/export/service"
	layout "sifs_backend/internals/features/certificates/layout/service"
	"sifs_backend/internals/features/certificates/scene"
	verifyController "sifs_backend/internals/features/certificates/verification/controller"
	"sifs_backend/internals/features/certificates/verification/model"
	verifyService "sifs_backend/internals/features/certificates/verification/service"
	helper "sifs_backend/internals/helpers"
)

type ArchiveOptions struct {
	Store  service.ObjectStore
	Prefix string
	Expiry time.Duration
}

type ExportController struct {
	Verifier verifyController.Verifier
	Exporter *service.Exporter
	Archive  *ArchiveOptions // nil disables ?delivery=archive
	Timeout  time.Duration
	Log      *zap.Logger
}

func NewExportController(v verifyController.Verifier, e *service.Exporter, timeout time.Duration, log *zap.Logger) *ExportController {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportController{Verifier: v, Exporter: e, Timeout: timeout, Log: log}
}

// GET /api/certificates/download?cert_no=&delivery=attachment|archive
func (ctrl *ExportController) Download(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Query("cert_no"))
	delivery := strings.ToLower(strings.TrimSpace(c.Query("delivery", "attachment")))
	if delivery != "attachment" && delivery != "archive" {
		return helper.JsonError(c, fiber.StatusBadRequest, "delivery must be attachment or archive")
	}
	if delivery == "archive" && ctrl.Archive == nil {
		return helper.JsonError(c, fiber.StatusNotImplemented, "Archive delivery is not configured")
	}

	ctx := c.UserContext()
	if ctrl.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ctrl.Timeout)
		defer cancel()
	}

	v, err := ctrl.Verifier.Verify(verifyService.WithClientIP(ctx, c.IP()), number)
	if err != nil {
		return verifyController.WriteVerifyError(c, err)
	}
	node := exportScene(*v)

	if delivery == "archive" {
		dl := &service.ArchiveDownloader{
			Store:  ctrl.Archive.Store,
			Prefix: ctrl.Archive.Prefix,
			Expiry: ctrl.Archive.Expiry,
		}
		if err := ctrl.Exporter.WithDownloader(dl).ExportPNG(ctx, node, v.Template, v.Certificate.CertificateNumber); err != nil {
			return ctrl.writeExportError(ctx, c, v, err)
		}
		return helper.JsonOK(c, "Certificate archived", fiber.Map{
			"key":      dl.Key,
			"url":      dl.SignedURL,
			"filename": service.CertificateFileName(v.Certificate.CertificateNumber),
		})
	}

	dl := service.AttachmentDownloader{C: c}
	if err := ctrl.Exporter.WithDownloader(dl).ExportPNG(ctx, node, v.Template, v.Certificate.CertificateNumber); err != nil {
		return ctrl.writeExportError(ctx, c, v, err)
	}
	return nil
}

// exportScene builds the on-screen node as it looks once the artwork has loaded.
func exportScene(v model.Verification) *scene.Element {
	view := layout.NewViewState(1)
	view.ImageLoaded()
	return layout.BuildScene(v, view).Root
}

func (ctrl *ExportController) writeExportError(ctx context.Context, c *fiber.Ctx, v *model.Verification, err error) error {
	ctrl.Log.Warn("❌ certificate export failed",
		zap.String("certificate_number", v.Certificate.CertificateNumber),
		zap.Error(err),
	)

	var ie *service.ImageLoadError
	var ee *service.ExportError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return helper.JsonError(c, fiber.StatusGatewayTimeout, "Export timed out. Please try again.")
	case errors.As(err, &ie):
		return helper.JsonErrorCode(c, fiber.StatusBadGateway, "IMAGE_LOAD_ERROR", service.ImageLoadMessage)
	case errors.As(err, &ee):
		return helper.JsonErrorCode(c, fiber.StatusInternalServerError, "EXPORT_ERROR", ee.UserMessage())
	default:
		return helper.JsonErrorCode(c, fiber.StatusInternalServerError, "EXPORT_ERROR", service.ExportFailedMessage)
	}
}

// GET /static/certificates/quiz-placeholder.png
func QuizPlaceholder(c *fiber.Ctx) error {
	data, err := service.QuizPlaceholderPNG()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "placeholder unavailable")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}
