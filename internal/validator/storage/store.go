// Package storage uploads canonical package bytes to a content store and
// records the hash to identifier mapping. Both steps are best-effort: the
// hash is the durable evidence of content identity, bookkeeping failures
// are logged and swallowed.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ContentStore stores a blob under a content-derived name and returns the
// identifier a reader would use to retrieve it.
type ContentStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// S3Config holds the settings for an S3-compatible content store (MinIO in
// the default deployment).
type S3Config struct {
	Region       string
	BaseEndpoint string
	Bucket       string
	RootUser     string
	RootPassword string
	KeyPrefix    string
}

// S3Store uploads blobs to an S3-compatible bucket. The client is created
// on first use so misconfiguration degrades to a per-run upload failure.
type S3Store struct {
	config S3Config

	once    sync.Once
	client  *s3.Client
	initErr error
}

func NewS3Store(config S3Config) *S3Store {
	return &S3Store{config: config}
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	s.once.Do(func() {
		cfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(s.config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				s.config.RootUser,     // MINIO_ROOT_USER
				s.config.RootPassword, // MINIO_ROOT_PASSWORD
				"")),
		)
		if err != nil {
			s.initErr = fmt.Errorf("error loading S3 config: %w", err)
			return
		}
		s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s.config.BaseEndpoint)
			o.UsePathStyle = true
		})
	})
	return s.client, s.initErr
}

// Put uploads data under "<prefix><name>.json" and returns the object key
// as the content identifier.
func (s *S3Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	key := s.objectKey(name)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading object %s: %w", key, err)
	}

	return key, nil
}

func (s *S3Store) objectKey(name string) string {
	prefix := s.config.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + name + ".json"
}

var _ ContentStore = (*S3Store)(nil)
