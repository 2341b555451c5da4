package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type VerificationLogModel struct {
	VerificationLogID                uuid.UUID      `json:"verification_log_id" gorm:"column:verification_log_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	VerificationLogCertificateNumber string         `json:"verification_log_certificate_number" gorm:"column:verification_log_certificate_number;type:varchar(128);not null;index"`
	VerificationLogOutcome           string         `json:"verification_log_outcome" gorm:"column:verification_log_outcome;type:varchar(32);not null;index"`
	VerificationLogCertificateType   string         `json:"verification_log_certificate_type" gorm:"column:verification_log_certificate_type;type:varchar(32)"`
	VerificationLogTemplateName      string         `json:"verification_log_template_name" gorm:"column:verification_log_template_name;type:varchar(255)"`
	VerificationLogMessage           string         `json:"verification_log_message" gorm:"column:verification_log_message;type:text"`
	VerificationLogClientIP          string         `json:"verification_log_client_ip" gorm:"column:verification_log_client_ip;type:varchar(64)"`
	VerificationLogDetails           datatypes.JSON `json:"verification_log_details" gorm:"column:verification_log_details;type:jsonb"`
	VerificationLogCreatedAt         time.Time      `json:"verification_log_created_at" gorm:"column:verification_log_created_at;not null;default:now();index"`
}

func (VerificationLogModel) TableName() string {
	return "certificate_verification_logs"
}
