package details

import (
	"github.com/gofiber/fiber/v2"

	exportController "sifs_backend/internals/features/certificates/export/controller"
	proxyController "sifs_backend/internals/features/certificates/imageproxy/controller"
	verifyController "sifs_backend/internals/features/certificates/verification/controller"
	logController "sifs_backend/internals/features/certificates/verification_logs/controller"
	rateLimiter "sifs_backend/internals/middlewares"
)

// CertificatePublicRoutes mounts the unauthenticated certificate surface on /api.
func CertificatePublicRoutes(api fiber.Router, verify *verifyController.VerificationController, export *exportController.ExportController) {
	certs := api.Group("/certificates")
	certs.Post("/verify", rateLimiter.VerifyRateLimiter(), verify.Verify)
	certs.Get("/verify", rateLimiter.VerifyRateLimiter(), verify.VerifyByQuery)
	certs.Get("/preview", rateLimiter.VerifyRateLimiter(), verify.Preview)
	certs.Get("/download", rateLimiter.ExportRateLimiter(), export.Download)
}

func ImageProxyRoutes(api fiber.Router, proxy *proxyController.ImageProxyController) {
	api.Get("/image-proxy", proxy.Relay)
}

func StaticCertificateRoutes(app *fiber.App) {
	app.Get("/static/certificates/quiz-placeholder.png", exportController.QuizPlaceholder)
}

// VerificationLogAdminRoutes expects an admin-guarded group.
func VerificationLogAdminRoutes(admin fiber.Router, logs *logController.VerificationLogController) {
	admin.Get("/verification-logs", logs.List)
}
