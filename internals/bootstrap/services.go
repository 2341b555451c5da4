package bootstrap

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sifs_backend/internals/configs"
	exportController "sifs_backend/internals/features/certificates/export/controller"
	exportService "sifs_backend/internals/features/certificates/export/service"
	imgsvc "sifs_backend/internals/features/certificates/imageproxy/service"
	verifyService "sifs_backend/internals/features/certificates/verification/service"
	logService "sifs_backend/internals/features/certificates/verification_logs/service"
	ossHelper "sifs_backend/internals/helpers/oss"
)

// Services holds everything the HTTP server and the CLI share.
type Services struct {
	Config *configs.Config
	DB     *gorm.DB
	Log    *zap.Logger

	Relay    *imgsvc.Relay
	Fetcher  *imgsvc.Fetcher
	Verifier *verifyService.VerificationService
	Loader   *exportService.ImageLoader
	Exporter *exportService.Exporter

	// nil unless the database is configured
	Logs *logService.VerificationLogService
	// nil unless ALI_OSS_* is complete
	Archive       *exportController.ArchiveOptions
	ArchiveBucket ossHelper.Bucket

	closers []func() error
}

// NewServices wires the certificate stack. db may be nil.
func NewServices(cfg *configs.Config, db *gorm.DB, log *zap.Logger) *Services {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Services{Config: cfg, DB: db, Log: log}

	s.Relay = imgsvc.NewRelay("", cfg.PublicOrigin)
	s.Fetcher = imgsvc.NewFetcher(imgsvc.FetcherConfig{
		AllowedHosts: cfg.ImageProxyAllowedHosts,
		MaxBytes:     cfg.ImageProxyMaxBytes,
		Timeout:      cfg.ImageProxyTimeout,

		AllowPrivateNetworks: cfg.ImageProxyAllowPrivate,
	}, nil)

	var recorder verifyService.Recorder = verifyService.NopRecorder{}
	if db != nil {
		s.Logs = logService.NewVerificationLogService(logService.NewGormStore(db), log)
		recorder = s.Logs
	}

	s.Verifier = verifyService.NewVerificationService(verifyService.Options{
		BaseURL:    cfg.CertAPIBaseURL,
		VerifyPath: cfg.CertVerifyPath,
		Timeout:    cfg.CertAPITimeout,
		Relay:      s.Relay,
		Recorder:   recorder,
		Logger:     log.Named("verify"),
	})

	s.Loader = exportService.NewImageLoader(exportService.LoaderOptions{
		Fetcher:      s.Fetcher,
		Relay:        s.Relay,
		PublicOrigin: cfg.PublicOrigin,
	})

	var rasterizer exportService.Rasterizer = exportService.NewRasterRenderer(s.Loader)
	if cfg.BrowserRenderer() {
		br := exportService.NewBrowserRenderer(s.Loader, cfg.ChromeBin, log.Named("chrome"))
		rasterizer = br
		s.closers = append(s.closers, br.Close)
	}

	var qr *exportService.QRStamper
	if cfg.ExportQREnabled {
		qr = exportService.NewQRStamper(cfg.PublicOrigin)
	}

	s.Exporter = exportService.NewExporter(exportService.ExporterOptions{
		Rasterizer:  rasterizer,
		SettleDelay: cfg.ExportSettleDelay,
		QR:          qr,
		Logger:      log.Named("export"),
	})

	if cfg.ArchiveEnabled() {
		bucket, err := exportService.OpenOSSBucket(exportService.OSSConfig{
			Endpoint:        cfg.OSSEndpoint,
			AccessKeyID:     cfg.OSSAccessKey,
			AccessKeySecret: cfg.OSSSecretKey,
			SecurityToken:   cfg.OSSSecurityToken,
			Bucket:          cfg.OSSBucket,
		})
		if err != nil {
			log.Warn("⚠️ export archive disabled", zap.Error(err))
		} else {
			s.ArchiveBucket = bucket
			s.Archive = &exportController.ArchiveOptions{
				Store:  bucket,
				Prefix: cfg.ArchivePrefix,
				Expiry: cfg.ArchiveURLTTL,
			}
		}
	}
	return s
}

// Close releases the browser renderer, if any.
func (s *Services) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
