package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/photovault/photovault/internal/config"
)

// S3 stores objects in an S3-compatible bucket.
type S3 struct {
	client *minio.Client
	bucket string
}

func NewS3(cfg config.StorageConfig) (*S3, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	return &S3{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *S3) Load(path string) ([]byte, error) {
	obj, err := s.client.GetObject(context.Background(), s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NotFound" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (s *S3) Save(path string, data []byte) error {
	_, err := s.client.PutObject(context.Background(), s.bucket, path,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func (s *S3) Exists(path string) bool {
	_, err := s.client.StatObject(context.Background(), s.bucket, path, minio.StatObjectOptions{})
	return err == nil
}

func (s *S3) Delete(path string) error {
	err := s.client.RemoveObject(context.Background(), s.bucket, path, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}
