package dto

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"sifs_backend/internals/features/certificates/verification/model"
)

var validate = validator.New()

/* =======================================================================
   Inbound (our API)
======================================================================= */

type VerifyCertificateRequest struct {
	CertificateNumber string `json:"certificate_number" validate:"max=128"`
}

func (r *VerifyCertificateRequest) Validate() error {
	return validate.Struct(r)
}

type PreviewQuery struct {
	CertNo         string  `query:"cert_no" validate:"max=128"`
	ContainerWidth float64 `query:"container_width" validate:"gte=0"`
}

func (q *PreviewQuery) Validate() error {
	return validate.Struct(q)
}

/* =======================================================================
   Upstream (certificate-management API)
======================================================================= */

// UpstreamVerifyRequest is the body sent to the remote verification endpoint.
type UpstreamVerifyRequest struct {
	CertificateNumber string `json:"certificate_number"`
}

type VerifyEnvelope struct {
	Success *bool       `json:"success" validate:"required"`
	Message string      `json:"message"`
	Data    *VerifyData `json:"data" validate:"-"`
}

type VerifyData struct {
	Certificate         *UpstreamCertificate  `json:"certificate" validate:"required"`
	CertificateTemplate *UpstreamTemplate     `json:"certificate_template"`
	Verification        *UpstreamVerification `json:"verification"`
	DownloadURL         string                `json:"download_url"`
	ViewURL             string                `json:"view_url"`
}

type UpstreamCertificate struct {
	Name               string `json:"name"`
	CertificateNumber  string `json:"certificate_number" validate:"required"`
	EventTitle         string `json:"event_title"`
	FormattedEventDate string `json:"formatted_event_date"`
	FormattedIssueDate string `json:"formatted_issue_date"`
}

type UpstreamTemplate struct {
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Orientation string `json:"orientation"`
}

type UpstreamVerification struct {
	CertificateType string `json:"certificate_type"`
}

func (e *VerifyEnvelope) IsSuccess() bool {
	return e != nil && e.Success != nil && *e.Success
}

// Validate checks the shape of a successful envelope. Unsuccessful envelopes
// only need a flag; their message is optional.
func (e *VerifyEnvelope) Validate() error {
	if err := validate.Struct(e); err != nil {
		return err
	}
	if !e.IsSuccess() {
		return nil
	}
	if e.Data == nil {
		return fmt.Errorf("response has no data")
	}
	return validate.Struct(e.Data)
}

// CertificateType reads data.verification.certificate_type.
func (d *VerifyData) CertificateType() model.CertificateType {
	if d == nil || d.Verification == nil {
		return model.CertificateTypeStandard
	}
	return model.NormalizeCertificateType(d.Verification.CertificateType)
}

func (c *UpstreamCertificate) ToModel(t model.CertificateType) model.CertificateRecord {
	return model.CertificateRecord{
		Name:               strings.TrimSpace(c.Name),
		CertificateNumber:  strings.TrimSpace(c.CertificateNumber),
		EventTitle:         strings.TrimSpace(c.EventTitle),
		FormattedEventDate: strings.TrimSpace(c.FormattedEventDate),
		FormattedIssueDate: strings.TrimSpace(c.FormattedIssueDate),
		CertificateType:    t,
	}
}

// HasTemplate reports whether a usable template object was sent.
func (d *VerifyData) HasTemplate() bool {
	return d != nil && d.CertificateTemplate != nil && strings.TrimSpace(d.CertificateTemplate.ImageURL) != ""
}

/* =======================================================================
   Outbound responses
======================================================================= */

type VerificationResponse struct {
	Certificate model.CertificateRecord  `json:"certificate"`
	Template    model.TemplateDescriptor `json:"template"`
	DownloadURL string                   `json:"download_url,omitempty"`
	ViewURL     string                   `json:"view_url,omitempty"`
	ExportPath  string                   `json:"export_path"`
}

func FromVerification(v *model.Verification, exportPath string) VerificationResponse {
	return VerificationResponse{
		Certificate: v.Certificate,
		Template:    v.Template,
		DownloadURL: v.DownloadURL,
		ViewURL:     v.ViewURL,
		ExportPath:  exportPath,
	}
}
