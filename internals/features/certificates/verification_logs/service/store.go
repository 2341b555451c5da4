package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"sifs_backend/internals/features/certificates/verification_logs/model"
)

type ListFilter struct {
	CertificateNumber string
	Outcome           string
}

// Store persists verification log rows.
type Store interface {
	Create(ctx context.Context, row *model.VerificationLogModel) error
	List(ctx context.Context, f ListFilter, offset, limit int) ([]model.VerificationLogModel, int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// AutoMigrate creates or updates the verification log table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.VerificationLogModel{})
}

func (s *GormStore) Create(ctx context.Context, row *model.VerificationLogModel) error {
	return s.DB.WithContext(ctx).Create(row).Error
}

func (s *GormStore) List(ctx context.Context, f ListFilter, offset, limit int) ([]model.VerificationLogModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.VerificationLogModel{})
	if n := strings.TrimSpace(f.CertificateNumber); n != "" {
		q = q.Where("verification_log_certificate_number = ?", n)
	}
	if o := strings.TrimSpace(f.Outcome); o != "" {
		q = q.Where("verification_log_outcome = ?", o)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.VerificationLogModel
	err := q.Order("verification_log_created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (s *GormStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("verification_log_created_at < ?", cutoff).
		Delete(&model.VerificationLogModel{})
	return res.RowsAffected, res.Error
}
