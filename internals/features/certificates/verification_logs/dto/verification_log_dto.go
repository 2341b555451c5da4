package dto

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"sifs_backend/internals/features/certificates/verification_logs/model"
)

var validate = validator.New()

// ListQuery is bound from the admin listing query string.
type ListQuery struct {
	CertNo  string `query:"cert_no" validate:"max=128"`
	Outcome string `query:"outcome" validate:"omitempty,oneof=verified failed missing_template empty_input"`
}

func (q *ListQuery) Validate() error {
	return validate.Struct(q)
}

// Details is the free-form part of a log row.
type Details struct {
	UpstreamStatus int `json:"upstream_status,omitempty"`
}

type VerificationLogResponse struct {
	ID                uuid.UUID `json:"id"`
	CertificateNumber string    `json:"certificate_number"`
	Outcome           string    `json:"outcome"`
	CertificateType   string    `json:"certificate_type,omitempty"`
	TemplateName      string    `json:"template_name,omitempty"`
	Message           string    `json:"message,omitempty"`
	ClientIP          string    `json:"client_ip,omitempty"`
	Details           Details   `json:"details"`
	CreatedAt         time.Time `json:"created_at"`
}

func FromModel(m model.VerificationLogModel) VerificationLogResponse {
	var d Details
	if len(m.VerificationLogDetails) > 0 {
		_ = sonic.Unmarshal(m.VerificationLogDetails, &d)
	}
	return VerificationLogResponse{
		ID:                m.VerificationLogID,
		CertificateNumber: m.VerificationLogCertificateNumber,
		Outcome:           m.VerificationLogOutcome,
		CertificateType:   m.VerificationLogCertificateType,
		TemplateName:      m.VerificationLogTemplateName,
		Message:           m.VerificationLogMessage,
		ClientIP:          m.VerificationLogClientIP,
		Details:           d,
		CreatedAt:         m.VerificationLogCreatedAt,
	}
}

func FromModels(rows []model.VerificationLogModel) []VerificationLogResponse {
	out := make([]VerificationLogResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
