package service

import (
	"context"
	"errors"

	"sifs_backend/internals/features/certificates/verification/model"
)

type Outcome string

const (
	OutcomeVerified        Outcome = "verified"
	OutcomeFailed          Outcome = "failed"
	OutcomeMissingTemplate Outcome = "missing_template"
	OutcomeEmptyInput      Outcome = "empty_input"
)

// Attempt describes one verification lookup for audit purposes.
type Attempt struct {
	CertificateNumber string
	Outcome           Outcome
	CertificateType   model.CertificateType
	TemplateName      string
	Message           string
	ClientIP          string
	UpstreamStatus    int
}

// Recorder receives every attempt after its outcome is known.
type Recorder interface {
	RecordVerification(ctx context.Context, a Attempt) error
}

type NopRecorder struct{}

func (NopRecorder) RecordVerification(context.Context, Attempt) error { return nil }

type ctxKey int

const clientIPKey ctxKey = iota

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

func attemptFor(ctx context.Context, number string, v *model.Verification, err error) Attempt {
	a := Attempt{CertificateNumber: number, ClientIP: clientIP(ctx)}
	var vf *VerificationFailedError
	switch {
	case err == nil:
		a.Outcome = OutcomeVerified
		a.CertificateType = v.Certificate.CertificateType
		a.TemplateName = v.Template.Name
	case errors.Is(err, ErrEmptyInput):
		a.Outcome = OutcomeEmptyInput
	case errors.Is(err, ErrMissingTemplate):
		a.Outcome = OutcomeMissingTemplate
	case errors.As(err, &vf):
		a.Outcome = OutcomeFailed
		a.UpstreamStatus = vf.StatusCode
	default:
		a.Outcome = OutcomeFailed
	}
	if err != nil {
		a.Message = UserMessage(err)
	}
	return a
}
