package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ImportStore archives the raw bytes of every CSV import so a bad import
// can be inspected after the fact. Archiving is best-effort: failures are
// logged, never surfaced to the importer.
type ImportStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

func NewImportStore(client *minio.Client, bucket string, logger *zap.Logger) *ImportStore {
	return &ImportStore{client: client, bucket: bucket, logger: logger}
}

// EnsureBucket creates the archive bucket if it does not exist yet.
func (s *ImportStore) EnsureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

// Archive stores one import file under org/kind/timestamp-filename.
func (s *ImportStore) Archive(ctx context.Context, orgID, kind, filename string, data []byte) {
	if s == nil || s.client == nil {
		return
	}
	object := fmt.Sprintf("%s/%s/%s-%s", orgID, kind, time.Now().UTC().Format("20060102T150405"), filename)
	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		s.logger.Warn("import archive failed",
			zap.String("object", object),
			zap.Error(err))
	}
}
