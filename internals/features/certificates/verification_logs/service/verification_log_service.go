package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	verify "sifs_backend/internals/features/certificates/verification/service"
	"sifs_backend/internals/features/certificates/verification_logs/dto"
	"sifs_backend/internals/features/certificates/verification_logs/model"
)

// VerificationLogService is the audit trail of certificate lookups. It
// satisfies verify.Recorder.
type VerificationLogService struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

func NewVerificationLogService(store Store, log *zap.Logger) *VerificationLogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VerificationLogService{store: store, now: time.Now, log: log}
}

var _ verify.Recorder = (*VerificationLogService)(nil)

func (s *VerificationLogService) RecordVerification(ctx context.Context, a verify.Attempt) error {
	return s.Record(ctx, a)
}

func (s *VerificationLogService) Record(ctx context.Context, a verify.Attempt) error {
	details, err := sonic.Marshal(dto.Details{UpstreamStatus: a.UpstreamStatus})
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	row := &model.VerificationLogModel{
		VerificationLogCertificateNumber: truncate(a.CertificateNumber, 128),
		VerificationLogOutcome:           string(a.Outcome),
		VerificationLogCertificateType:   string(a.CertificateType),
		VerificationLogTemplateName:      a.TemplateName,
		VerificationLogMessage:           a.Message,
		VerificationLogClientIP:          a.ClientIP,
		VerificationLogDetails:           details,
		VerificationLogCreatedAt:         s.now().UTC(),
	}
	if err := s.store.Create(ctx, row); err != nil {
		return fmt.Errorf("insert verification log: %w", err)
	}
	return nil
}

// List returns rows newest first plus the total matching count.
func (s *VerificationLogService) List(ctx context.Context, f ListFilter, offset, limit int) ([]model.VerificationLogModel, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, f, offset, limit)
}

// PurgeOlderThan hard-deletes rows created before cutoff.
func (s *VerificationLogService) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge verification logs: %w", err)
	}
	if n > 0 {
		s.log.Info("🧹 verification logs purged", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
