package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verify "sifs_backend/internals/features/certificates/verification/service"
	"sifs_backend/internals/features/certificates/verification_logs/dto"
	"sifs_backend/internals/features/certificates/verification_logs/model"
)

type memStore struct {
	mu   sync.Mutex
	rows []model.VerificationLogModel
	err  error
}

func (m *memStore) Create(_ context.Context, row *model.VerificationLogModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	row.VerificationLogID = uuid.New()
	m.rows = append(m.rows, *row)
	return nil
}

func (m *memStore) List(_ context.Context, f ListFilter, offset, limit int) ([]model.VerificationLogModel, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hit []model.VerificationLogModel
	for _, r := range m.rows {
		if f.CertificateNumber != "" && r.VerificationLogCertificateNumber != f.CertificateNumber {
			continue
		}
		if f.Outcome != "" && r.VerificationLogOutcome != f.Outcome {
			continue
		}
		hit = append(hit, r)
	}
	sort.SliceStable(hit, func(i, j int) bool {
		return hit[i].VerificationLogCreatedAt.After(hit[j].VerificationLogCreatedAt)
	})
	total := int64(len(hit))
	if offset > len(hit) {
		offset = len(hit)
	}
	end := offset + limit
	if end > len(hit) {
		end = len(hit)
	}
	return hit[offset:end], total, nil
}

func (m *memStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.VerificationLogCreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func clock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestRecordMapsAttempt(t *testing.T) {
	store := &memStore{}
	svc := NewVerificationLogService(store, nil)

	err := svc.RecordVerification(context.Background(), verify.Attempt{
		CertificateNumber: "SIFS-1",
		Outcome:           verify.OutcomeFailed,
		Message:           "Not found",
		ClientIP:          "10.0.0.1",
		UpstreamStatus:    404,
	})
	require.NoError(t, err)
	require.Len(t, store.rows, 1)

	got := dto.FromModel(store.rows[0])
	assert.Equal(t, "SIFS-1", got.CertificateNumber)
	assert.Equal(t, "failed", got.Outcome)
	assert.Equal(t, "Not found", got.Message)
	assert.Equal(t, "10.0.0.1", got.ClientIP)
	assert.Equal(t, 404, got.Details.UpstreamStatus)
}

func TestRecordTruncatesLongNumbers(t *testing.T) {
	store := &memStore{}
	svc := NewVerificationLogService(store, nil)

	require.NoError(t, svc.Record(context.Background(), verify.Attempt{CertificateNumber: strings.Repeat("9", 300), Outcome: verify.OutcomeFailed}))
	assert.Len(t, store.rows[0].VerificationLogCertificateNumber, 128)
}

func TestRecordWrapsStoreError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewVerificationLogService(&memStore{err: boom}, nil)
	err := svc.Record(context.Background(), verify.Attempt{Outcome: verify.OutcomeVerified})
	assert.ErrorIs(t, err, boom)
}

func TestListNewestFirstWithFilter(t *testing.T) {
	store := &memStore{}
	svc := NewVerificationLogService(store, nil)
	svc.now = clock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	ctx := context.Background()
	for i, o := range []verify.Outcome{verify.OutcomeVerified, verify.OutcomeFailed, verify.OutcomeVerified, verify.OutcomeEmptyInput} {
		require.NoError(t, svc.Record(ctx, verify.Attempt{CertificateNumber: "N" + string(rune('0'+i)), Outcome: o}))
	}

	rows, total, err := svc.List(ctx, ListFilter{Outcome: "verified"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "N2", rows[0].VerificationLogCertificateNumber)
	assert.Equal(t, "N0", rows[1].VerificationLogCertificateNumber)

	rows, total, err = svc.List(ctx, ListFilter{}, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, rows, 2)
}

func TestPurgeOlderThan(t *testing.T) {
	store := &memStore{}
	svc := NewVerificationLogService(store, nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = clock(start)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(ctx, verify.Attempt{CertificateNumber: "X", Outcome: verify.OutcomeVerified}))
	}

	n, err := svc.PurgeOlderThan(ctx, start.Add(3*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Len(t, store.rows, 3)
}
