package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"sifs_backend/internals/bootstrap"
	"sifs_backend/internals/constants"
	exportController "sifs_backend/internals/features/certificates/export/controller"
	proxyController "sifs_backend/internals/features/certificates/imageproxy/controller"
	verifyController "sifs_backend/internals/features/certificates/verification/controller"
	logController "sifs_backend/internals/features/certificates/verification_logs/controller"
	"sifs_backend/internals/middlewares"
	"sifs_backend/internals/middlewares/auth"
	routeDetails "sifs_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, s *bootstrap.Services) {
	startTime = time.Now()
	log := s.Log

	BaseRoutes(app, s.DB, s.Config.Environment)
	routeDetails.StaticCertificateRoutes(app)

	// ===================== PUBLIC =====================
	log.Info("[INFO] Mounting certificate routes...")
	api := app.Group("/api", middlewares.GlobalRateLimiter())

	verify := verifyController.NewVerificationController(s.Verifier, s.Loader)
	export := exportController.NewExportController(s.Verifier, s.Exporter, s.Config.ExportTimeout, log.Named("export"))
	export.Archive = s.Archive

	routeDetails.CertificatePublicRoutes(api, verify, export)
	routeDetails.ImageProxyRoutes(api, proxyController.NewImageProxyController(s.Fetcher, log.Named("relay")))

	// ===================== ADMIN =====================
	if s.Logs == nil || s.Config.JWTSecret == "" {
		log.Info("[INFO] Admin routes skipped", zap.Bool("db", s.Logs != nil), zap.Bool("jwt", s.Config.JWTSecret != ""))
		return
	}
	log.Info("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		auth.AuthJWT(auth.AuthJWTOpts{
			Secret:              s.Config.JWTSecret,
			AllowCookieFallback: true,
		}),
		auth.OnlyRoles(constants.RoleErrorAdmin("verification logs"), constants.RoleAdmin),
	)
	routeDetails.VerificationLogAdminRoutes(admin, logController.NewVerificationLogController(s.Logs))
}
