package controller

import (
	"context"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	layout "sifs_backend/internals/features/certificates/layout/service"
	"sifs_backend/internals/features/certificates/verification/dto"
	"sifs_backend/internals/features/certificates/verification/model"
	"sifs_backend/internals/features/certificates/verification/service"
	helper "sifs_backend/internals/helpers"
)

const DefaultExportPath = "/api/certificates/download"

// Verifier is satisfied by *service.VerificationService.
type Verifier interface {
	Verify(ctx context.Context, certificateNumber string) (*model.Verification, error)
}

type VerificationController struct {
	Verifier   Verifier
	Probe      layout.ImageProbe
	ExportPath string
}

func NewVerificationController(v Verifier, probe layout.ImageProbe) *VerificationController {
	return &VerificationController{Verifier: v, Probe: probe, ExportPath: DefaultExportPath}
}

// POST /api/certificates/verify
func (ctrl *VerificationController) Verify(c *fiber.Ctx) error {
	var req dto.VerifyCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return helper.ValidationError(c, err)
	}
	return ctrl.respond(c, req.CertificateNumber)
}

// GET /api/certificates/verify?cert_no=
func (ctrl *VerificationController) VerifyByQuery(c *fiber.Ctx) error {
	req := dto.VerifyCertificateRequest{CertificateNumber: c.Query("cert_no")}
	if err := req.Validate(); err != nil {
		return helper.ValidationError(c, err)
	}
	return ctrl.respond(c, req.CertificateNumber)
}

func (ctrl *VerificationController) respond(c *fiber.Ctx, number string) error {
	v, err := ctrl.Verifier.Verify(service.WithClientIP(c.UserContext(), c.IP()), number)
	if err != nil {
		return WriteVerifyError(c, err)
	}
	return helper.JsonOK(c, "Certificate verified", dto.FromVerification(v, ctrl.exportPath(v)))
}

// GET /api/certificates/preview?cert_no=&container_width=
func (ctrl *VerificationController) Preview(c *fiber.Ctx) error {
	var q dto.PreviewQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}
	if err := q.Validate(); err != nil {
		return helper.ValidationError(c, err)
	}

	ctx := service.WithClientIP(c.UserContext(), c.IP())
	v, err := ctrl.Verifier.Verify(ctx, q.CertNo)
	if err != nil {
		return WriteVerifyError(c, err)
	}

	sc := layout.Preview(ctx, ctrl.Probe, *v, q.ContainerWidth)
	return helper.JsonOK(c, "Certificate preview", fiber.Map{
		"verification": dto.FromVerification(v, ctrl.exportPath(v)),
		"scene":        sc,
		"can_export":   sc.View.CanExport(),
	})
}

func (ctrl *VerificationController) exportPath(v *model.Verification) string {
	p := ctrl.ExportPath
	if p == "" {
		p = DefaultExportPath
	}
	return p + "?cert_no=" + url.QueryEscape(v.Certificate.CertificateNumber)
}

// WriteVerifyError maps verification failures onto HTTP answers. Upstream 4xx
// codes pass through and a declined 2xx envelope becomes 404. Malformed
// answers and transport failures are 502.
func WriteVerifyError(c *fiber.Ctx, err error) error {
	var vf *service.VerificationFailedError
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		return helper.JsonError(c, fiber.StatusBadRequest, service.UserMessage(err))
	case errors.Is(err, service.ErrMissingTemplate):
		return helper.JsonErrorCode(c, fiber.StatusUnprocessableEntity, "MISSING_TEMPLATE", service.UserMessage(err))
	case errors.As(err, &vf):
		return helper.JsonError(c, upstreamStatus(vf), vf.Message)
	default:
		return helper.JsonError(c, fiber.StatusBadGateway, service.UserMessage(err))
	}
}

func upstreamStatus(vf *service.VerificationFailedError) int {
	code := vf.StatusCode
	switch {
	case code >= 400 && code < 500:
		return code
	case code >= 200 && code < 300 && vf.Err == nil:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}
