package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"eventdesk/internal/domain"
)

// S3API is the subset of the S3 client the store uses. *s3.Client satisfies
// it; tests substitute a fake.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Store struct {
	client S3API
	bucket string
	region string
}

// NewS3Store returns a BlobStore backed by the given S3 bucket.
func NewS3Store(client S3API, bucket, region string) domain.BlobStore {
	return &s3Store{client: client, bucket: bucket, region: region}
}

// Upload stores the asset under prefix/ownerID/<uuid><ext> and returns the
// public URL and object key.
func (s *s3Store) Upload(ctx context.Context, up *domain.AssetUpload, pathPrefix, ownerID string) (*domain.AssetRef, error) {
	if up == nil || len(up.Data) == 0 {
		return nil, fmt.Errorf("empty asset upload")
	}
	key := path.Join(pathPrefix, ownerID, uuid.NewString()+fileExt(up.Filename))
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(up.Data),
	}
	if up.ContentType != "" {
		in.ContentType = aws.String(up.ContentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return nil, fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	return &domain.AssetRef{URL: url, Key: key}, nil
}

// Delete removes the object. S3 deletes are idempotent, so a missing key is
// not an error.
func (s *s3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func fileExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ""
}
