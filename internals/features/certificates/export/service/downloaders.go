package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/gofiber/fiber/v2"
)

// AttachmentDownloader writes the file as an HTTP attachment on a Fiber response.
type AttachmentDownloader struct {
	C *fiber.Ctx
}

func (d AttachmentDownloader) TriggerDownload(_ context.Context, blob Blob, filename string) error {
	d.C.Set(fiber.HeaderContentType, blob.MIME)
	d.C.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	d.C.Set(fiber.HeaderCacheControl, "no-store")
	return d.C.Status(fiber.StatusOK).Send(blob.Data)
}

// FileDownloader saves into a directory; used by the CLI.
type FileDownloader struct {
	Dir string
	// Saved is the path of the last written file.
	Saved string
}

func (d *FileDownloader) TriggerDownload(_ context.Context, blob Blob, filename string) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	p := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(p, blob.Data, 0o644); err != nil {
		return err
	}
	d.Saved = p
	return nil
}

/* =======================================================================
   OSS archive
======================================================================= */

// ObjectStore is the slice of an OSS bucket the archive needs.
type ObjectStore interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
	SignURL(objectKey string, method oss.HTTPMethod, expiredInSec int64, options ...oss.Option) (string, error)
}

type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	SecurityToken   string
	Bucket          string
	Prefix          string
	URLExpiry       time.Duration
}

func (c OSSConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

// OpenOSSBucket connects to the configured bucket.
func OpenOSSBucket(c OSSConfig) (*oss.Bucket, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}
	var opts []oss.ClientOption
	if c.SecurityToken != "" {
		opts = append(opts, oss.SecurityToken(c.SecurityToken))
	}
	client, err := oss.New(c.Endpoint, c.AccessKeyID, c.AccessKeySecret, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	return bkt, nil
}

// ArchiveDownloader uploads the export and records a signed GET link.
type ArchiveDownloader struct {
	Store  ObjectStore
	Prefix string
	Expiry time.Duration
	Now    func() time.Time

	Key       string
	SignedURL string
}

func (d *ArchiveDownloader) TriggerDownload(ctx context.Context, blob Blob, filename string) error {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	expiry := d.Expiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	key := now().UTC().Format("2006/01/02") + "/" + filepath.Base(filename)
	if p := strings.Trim(d.Prefix, "/"); p != "" {
		key = p + "/" + key
	}

	err := d.Store.PutObject(key, bytes.NewReader(blob.Data),
		oss.WithContext(ctx),
		oss.ContentType(blob.MIME),
		oss.ContentDisposition(fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(filename))),
	)
	if err != nil {
		return fmt.Errorf("oss put %s: %w", key, err)
	}

	signed, err := d.Store.SignURL(key, oss.HTTPGet, int64(expiry/time.Second))
	if err != nil {
		return fmt.Errorf("oss sign %s: %w", key, err)
	}
	d.Key, d.SignedURL = key, signed
	return nil
}
