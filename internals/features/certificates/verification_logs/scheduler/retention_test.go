package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	cutoff time.Time
	err    error
}

func (f *fakePurger) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

type fakeBucket struct{ listed bool }

func (b *fakeBucket) ListObjects(...oss.Option) (oss.ListObjectsResult, error) {
	b.listed = true
	return oss.ListObjectsResult{}, nil
}

func (b *fakeBucket) DeleteObjects([]string, ...oss.Option) (oss.DeleteObjectsResult, error) {
	return oss.DeleteObjectsResult{}, nil
}

func TestRunOnceUsesRetentionWindow(t *testing.T) {
	p := &fakePurger{}
	b := &fakeBucket{}
	r := NewRetention(RetentionConfig{RetentionDays: 30, ArchiveBucket: b, ArchiveRetention: time.Hour}, p, nil)
	now := time.Date(2025, 6, 30, 2, 15, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Equal(t, now.AddDate(0, 0, -30), p.cutoff)
	assert.True(t, b.listed)
}

func TestRunOnceDefaultsAndErrors(t *testing.T) {
	boom := errors.New("db down")
	p := &fakePurger{err: boom}
	r := NewRetention(RetentionConfig{}, p, nil)
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	assert.ErrorIs(t, r.RunOnce(context.Background()), boom)
	assert.Equal(t, now.AddDate(0, 0, -90), p.cutoff)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	_, err := NewRetention(RetentionConfig{Schedule: "not a cron"}, &fakePurger{}, nil).Start()
	assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	c, err := NewRetention(RetentionConfig{Schedule: "15 2 * * *"}, &fakePurger{}, nil).Start()
	require.NoError(t, err)
	<-c.Stop().Done()
}
