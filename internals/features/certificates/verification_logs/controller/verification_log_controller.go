package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"sifs_backend/internals/features/certificates/verification_logs/dto"
	"sifs_backend/internals/features/certificates/verification_logs/model"
	"sifs_backend/internals/features/certificates/verification_logs/service"
	helper "sifs_backend/internals/helpers"
)

// Lister is satisfied by *service.VerificationLogService.
type Lister interface {
	List(ctx context.Context, f service.ListFilter, offset, limit int) ([]model.VerificationLogModel, int64, error)
}

type VerificationLogController struct {
	Svc Lister
}

func NewVerificationLogController(svc Lister) *VerificationLogController {
	return &VerificationLogController{Svc: svc}
}

// GET /api/a/verification-logs?cert_no=&outcome=&page=&per_page=
func (ctrl *VerificationLogController) List(c *fiber.Ctx) error {
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}
	if err := q.Validate(); err != nil {
		return helper.ValidationError(c, err)
	}

	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctrl.Svc.List(c.UserContext(), service.ListFilter{
		CertificateNumber: q.CertNo,
		Outcome:           q.Outcome,
	}, p.Offset, p.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load verification logs")
	}

	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPaginationFromOffset(total, p.Offset, p.Limit, len(rows)))
}
