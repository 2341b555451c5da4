package model

import "strings"

/* =======================================================================
   Orientation & native canvas sizes (A4 @ 96dpi)
======================================================================= */

type Orientation string

const (
	OrientationVertical   Orientation = "vertical"
	OrientationHorizontal Orientation = "horizontal"
)

const (
	A4ShortSidePx = 794
	A4LongSidePx  = 1123
)

// NormalizeOrientation maps any upstream value onto one of the two orientations.
// Only "vertical" (any case) is vertical; everything else is horizontal.
func NormalizeOrientation(raw string) Orientation {
	if strings.EqualFold(strings.TrimSpace(raw), string(OrientationVertical)) {
		return OrientationVertical
	}
	return OrientationHorizontal
}

// NativeSize returns the fixed pixel size of the certificate canvas.
func (o Orientation) NativeSize() (width, height int) {
	if o == OrientationVertical {
		return A4ShortSidePx, A4LongSidePx
	}
	return A4LongSidePx, A4ShortSidePx
}

func (o Orientation) NativeWidth() int {
	w, _ := o.NativeSize()
	return w
}

/* =======================================================================
   Certificate type
======================================================================= */

type CertificateType string

const (
	CertificateTypeStandard CertificateType = "standard"
	CertificateTypeQuiz     CertificateType = "quiz_certificate"
)

func NormalizeCertificateType(raw string) CertificateType {
	if strings.EqualFold(strings.TrimSpace(raw), string(CertificateTypeQuiz)) {
		return CertificateTypeQuiz
	}
	return CertificateTypeStandard
}

/* =======================================================================
   Records
======================================================================= */

type CertificateRecord struct {
	Name               string          `json:"name"`
	CertificateNumber  string          `json:"certificate_number"`
	EventTitle         string          `json:"event_title,omitempty"`
	FormattedEventDate string          `json:"formatted_event_date,omitempty"`
	FormattedIssueDate string          `json:"formatted_issue_date,omitempty"`
	CertificateType    CertificateType `json:"certificate_type"`
}

func (c CertificateRecord) IsQuiz() bool {
	return c.CertificateType == CertificateTypeQuiz
}

// DisplayDate is the date printed on quiz certificates.
func (c CertificateRecord) DisplayDate() string {
	if d := strings.TrimSpace(c.FormattedIssueDate); d != "" {
		return d
	}
	return strings.TrimSpace(c.FormattedEventDate)
}

type TemplateDescriptor struct {
	Name        string      `json:"name"`
	ImageURL    string      `json:"image_url"`
	Orientation Orientation `json:"orientation"`
}

const (
	PlaceholderImageURL    = "/static/certificates/quiz-placeholder.png"
	QuizTemplateName       = "Quiz Certificate"
	DownloadFilenamePrefix = "SIFS"
)

// DefaultQuizTemplate is used when the API returns a quiz certificate without artwork.
func DefaultQuizTemplate() TemplateDescriptor {
	return TemplateDescriptor{
		Name:        QuizTemplateName,
		ImageURL:    PlaceholderImageURL,
		Orientation: OrientationHorizontal,
	}
}

// Verification is one successful lookup: immutable until the next lookup.
type Verification struct {
	Certificate CertificateRecord  `json:"certificate"`
	Template    TemplateDescriptor `json:"template"`
	DownloadURL string             `json:"download_url,omitempty"`
	ViewURL     string             `json:"view_url,omitempty"`
}
