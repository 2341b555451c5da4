package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	relay "sifs_backend/internals/features/certificates/imageproxy/service"
	"sifs_backend/internals/features/certificates/verification/dto"
	"sifs_backend/internals/features/certificates/verification/model"
)

const (
	DefaultVerifyPath = "/api/certificates/verify"
	maxEnvelopeBytes  = 2 << 20
)

type Options struct {
	BaseURL    string
	VerifyPath string
	Timeout    time.Duration
	HTTPClient *http.Client
	Relay      *relay.Relay
	Recorder   Recorder
	Logger     *zap.Logger
}

// VerificationService talks to the remote certificate-management API.
// Every call re-fetches; nothing is cached.
type VerificationService struct {
	endpoint string
	client   *http.Client
	relay    *relay.Relay
	recorder Recorder
	log      *zap.Logger
}

func NewVerificationService(opt Options) *VerificationService {
	path := opt.VerifyPath
	if path == "" {
		path = DefaultVerifyPath
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 15 * time.Second
	}
	client := opt.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opt.Timeout}
	}
	if opt.Relay == nil {
		opt.Relay = relay.NewRelay("", "")
	}
	if opt.Recorder == nil {
		opt.Recorder = NopRecorder{}
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return &VerificationService{
		endpoint: strings.TrimRight(opt.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		client:   client,
		relay:    opt.Relay,
		recorder: opt.Recorder,
		log:      opt.Logger,
	}
}

// Verify looks up a certificate number. The number is trimmed; a blank number
// fails with ErrEmptyInput without any network round trip.
func (s *VerificationService) Verify(ctx context.Context, certificateNumber string) (*model.Verification, error) {
	number := strings.TrimSpace(certificateNumber)
	v, err := s.verify(ctx, number)
	s.record(ctx, attemptFor(ctx, number, v, err))
	return v, err
}

func (s *VerificationService) verify(ctx context.Context, number string) (*model.Verification, error) {
	if number == "" {
		return nil, ErrEmptyInput
	}

	env, err := s.post(ctx, number)
	if err != nil {
		return nil, err
	}

	data := env.Data
	cert := data.Certificate.ToModel(data.CertificateType())

	var tpl model.TemplateDescriptor
	switch {
	case data.HasTemplate():
		t := data.CertificateTemplate
		tpl = model.TemplateDescriptor{
			Name:        strings.TrimSpace(t.Name),
			ImageURL:    s.relay.Rewrite(t.ImageURL),
			Orientation: model.NormalizeOrientation(t.Orientation),
		}
	case cert.IsQuiz():
		tpl = model.DefaultQuizTemplate()
	default:
		return nil, ErrMissingTemplate
	}

	return &model.Verification{
		Certificate: cert,
		Template:    tpl,
		DownloadURL: strings.TrimSpace(data.DownloadURL),
		ViewURL:     strings.TrimSpace(data.ViewURL),
	}, nil
}

func (s *VerificationService) post(ctx context.Context, number string) (*dto.VerifyEnvelope, error) {
	body, err := sonic.Marshal(dto.UpstreamVerifyRequest{CertificateNumber: number})
	if err != nil {
		return nil, newFailed(0, "", fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newFailed(0, "", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("certificate api unreachable", zap.String("certificate_number", number), zap.Error(err))
		return nil, newFailed(0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
	if err != nil {
		return nil, newFailed(resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}

	var env dto.VerifyEnvelope
	decodeErr := sonic.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil {
			msg = strings.TrimSpace(env.Message)
		}
		return nil, newFailed(resp.StatusCode, msg, fmt.Errorf("certificate api status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return nil, newFailed(resp.StatusCode, "", fmt.Errorf("decode response: %w", decodeErr))
	}
	if err := env.Validate(); err != nil {
		s.log.Warn("unexpected certificate api response", zap.String("certificate_number", number), zap.Error(err))
		return nil, newFailed(resp.StatusCode, "", fmt.Errorf("invalid response shape: %w", err))
	}
	if !env.IsSuccess() {
		return nil, newFailed(resp.StatusCode, strings.TrimSpace(env.Message), nil)
	}
	return &env, nil
}

func (s *VerificationService) record(ctx context.Context, a Attempt) {
	// a recorder failure never fails the lookup
	if err := s.recorder.RecordVerification(context.WithoutCancel(ctx), a); err != nil {
		s.log.Error("record verification attempt", zap.String("certificate_number", a.CertificateNumber), zap.Error(err))
	}
}
