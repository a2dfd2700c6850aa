// Package objectstore is the blob-storage side of replay persistence
// (SPEC_FULL.md A6): replay metadata lives in Postgres via internal/sqlstore,
// the replay bytes themselves live here, in S3 or an S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Store puts and gets replay blobs keyed by their storage path (the same
// ReplayPath recorded in models.Replay).
type Store struct {
	bucket     string
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	logger     *zap.SugaredLogger
}

// New builds a Store over an already-configured S3 client (region,
// credentials, and endpoint resolution are the caller's concern — built
// from aws-sdk-go-v2/config.LoadDefaultConfig in cmd/server).
func New(client *s3.Client, bucket string, logger *zap.Logger) *Store {
	return &Store{
		bucket:     bucket,
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		logger:     logger.Sugar(),
	}
}

// PutBlob uploads data under key, using the multipart manager so large
// replay files don't need to fit in one PutObject call.
func (s *Store) PutBlob(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("objectstore: put %s: %w", key, err)
	}
	s.logger.Infow("replay blob stored", "key", key, "bytes", len(data))
	return nil
}

// GetBlob downloads the blob at key into memory. Replays are small enough
// (tens of KB) that this is simpler than streaming to a temp file, unlike
// the multipart path PutBlob takes for uploads.
func (s *Store) GetBlob(ctx context.Context, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: get %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// DeleteBlob removes the object at key. No code path in this module calls
// it.
func (s *Store) DeleteBlob(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("objectstore: delete %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present in the bucket via a HeadObject
// call, without downloading the body.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("objectstore: head %s: %w", key, err)
	}
	return true, nil
}
