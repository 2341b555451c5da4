package helper

import (
	"context"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"
)

// Bucket is the slice of *oss.Bucket the reaper uses.
type Bucket interface {
	ListObjects(options ...oss.Option) (oss.ListObjectsResult, error)
	DeleteObjects(objectKeys []string, options ...oss.Option) (oss.DeleteObjectsResult, error)
}

const deleteBatch = 1000

// ReapPrefix deletes objects under prefix last modified before now-retention.
// With dryRun it only counts. Failed batches are logged and skipped.
func ReapPrefix(ctx context.Context, bucket Bucket, prefix string, retention time.Duration, dryRun bool, log *zap.Logger) (int, error) {
	threshold := time.Now().Add(-retention)
	log = log.Named("oss-reaper")
	log.Info("scanning", zap.String("prefix", prefix), zap.Time("threshold", threshold), zap.Bool("dry", dryRun))

	marker := oss.Marker("")
	var keys []string
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		lor, err := bucket.ListObjects(oss.Prefix(prefix), marker, oss.MaxKeys(deleteBatch))
		if err != nil {
			return 0, err
		}
		for _, obj := range lor.Objects {
			total++
			if obj.Key != "" && obj.LastModified.Before(threshold) {
				keys = append(keys, obj.Key)
			}
		}
		if !lor.IsTruncated {
			break
		}
		marker = oss.Marker(lor.NextMarker)
	}

	if len(keys) == 0 {
		log.Info("nothing to delete", zap.Int("scanned", total))
		return 0, nil
	}
	if dryRun {
		log.Info("dry run", zap.Int("would_delete", len(keys)), zap.Int("scanned", total))
		return 0, nil
	}

	deleted := 0
	for i := 0; i < len(keys); i += deleteBatch {
		end := i + deleteBatch
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[i:end]
		if _, err := bucket.DeleteObjects(batch, oss.DeleteObjectsQuiet(true)); err != nil {
			log.Warn("delete batch failed", zap.Int("from", i), zap.Int("to", end), zap.Error(err))
			continue
		}
		deleted += len(batch)
	}
	log.Info("deleted", zap.Int("objects", deleted), zap.Int("scanned", total))
	return deleted, nil
}
