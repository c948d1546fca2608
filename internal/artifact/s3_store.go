package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store keeps one-time artifacts in an S3-compatible bucket. Take
// reads the object and then removes it; a failed remove is logged and
// the read still succeeds.
type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Store{
		client:     client,
		bucketName: bucket,
		region:     region,
	}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("store is nil")
	}
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) Put(ctx context.Context, blob Blob) (string, error) {
	if s == nil {
		return "", fmt.Errorf("store is nil")
	}
	if len(blob.Data) == 0 {
		return "", fmt.Errorf("blob is empty")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	id := uuid.NewString()
	_, err := s.client.PutObject(ctx, s.bucketName, id, bytes.NewReader(blob.Data), int64(len(blob.Data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *S3Store) Take(ctx context.Context, id string) (Blob, error) {
	if s == nil {
		return Blob{}, fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Blob{}, fmt.Errorf("id is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return Blob{}, fmt.Errorf("ensure bucket: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, id, minio.GetObjectOptions{})
	if err != nil {
		return Blob{}, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return Blob{}, ErrNotFound
		}
		return Blob{}, err
	}
	stat, err := obj.Stat()
	contentType := "application/octet-stream"
	if err == nil && stat.ContentType != "" {
		contentType = stat.ContentType
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, id, minio.RemoveObjectOptions{}); err != nil {
		log.Printf("artifact: delete after read failed for %s: %v", id, err)
	}
	return Blob{Data: data, ContentType: contentType}, nil
}
