package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"sifs_backend/internals/features/certificates/imageproxy/service"
	helper "sifs_backend/internals/helpers"
)

type ImageProxyController struct {
	Fetcher *service.Fetcher
	Log     *zap.Logger
}

func NewImageProxyController(f *service.Fetcher, log *zap.Logger) *ImageProxyController {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageProxyController{Fetcher: f, Log: log}
}

// GET /api/image-proxy?url=
// Serves a remote template image from our origin so browsers can read its pixels.
func (ctrl *ImageProxyController) Relay(c *fiber.Ctx) error {
	target := c.Query("url")
	img, err := ctrl.Fetcher.Fetch(c.UserContext(), target)
	if err != nil {
		return ctrl.writeError(c, target, err)
	}

	c.Set(fiber.HeaderContentType, img.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set("Cross-Origin-Resource-Policy", "cross-origin")
	return c.Status(fiber.StatusOK).Send(img.Data)
}

func (ctrl *ImageProxyController) writeError(c *fiber.Ctx, target string, err error) error {
	var up *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrHostNotAllowed), errors.Is(err, service.ErrPrivateAddress):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrTooLarge):
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrNotImage):
		return helper.JsonError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.As(err, &up):
		ctrl.Log.Warn("image relay upstream failed", zap.String("url", target), zap.Error(err))
		return helper.JsonError(c, fiber.StatusBadGateway, "Failed to fetch the image")
	default:
		ctrl.Log.Error("image relay failed", zap.String("url", target), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch the image")
	}
}
