// Package storage keeps property media in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrUnsupportedType = errors.New("storage: only image uploads are accepted")
	ErrForeignURL      = errors.New("storage: url does not belong to the media bucket")
)

// KeyPrefix namespaces property images inside the bucket.
const KeyPrefix = "properties/"

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// Config points at the bucket.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MediaStore uploads, resolves and removes property images.
type MediaStore struct {
	client     objectAPI
	bucket     string
	publicBase string
	newKey     func(ext string) string
}

var newMinioClient = func(cfg Config) (objectAPI, error) {
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

// NewMediaStore connects a MinIO client; it does not touch the network.
func NewMediaStore(cfg Config) (*MediaStore, error) {
	client, err := newMinioClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return newMediaStore(client, cfg), nil
}

func newMediaStore(client objectAPI, cfg Config) *MediaStore {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return &MediaStore{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: base + "/" + cfg.Bucket,
		newKey: func(ext string) string {
			return KeyPrefix + uuid.Must(uuid.NewV7()).String() + ext
		},
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MediaStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: bucket check: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("storage: make bucket: %w", err)
	}
	return nil
}

// Upload stores an image and returns its public URL.
func (s *MediaStore) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := allowedImageTypes[ct]
	if !ok {
		return "", ErrUnsupportedType
	}
	key := s.newKey(ext)
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  ct,
		CacheControl: "public, max-age=31536000, immutable",
	}); err != nil {
		return "", fmt.Errorf("storage: upload: %w", err)
	}
	return s.PublicURL(key), nil
}

// PublicURL resolves an object key to its public address.
func (s *MediaStore) PublicURL(key string) string {
	return s.publicBase + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL reverses PublicURL.
func (s *MediaStore) KeyFromURL(raw string) (string, error) {
	if !strings.HasPrefix(raw, s.publicBase+"/") {
		return "", ErrForeignURL
	}
	u, err := url.Parse(strings.TrimPrefix(raw, s.publicBase+"/"))
	if err != nil {
		return "", ErrForeignURL
	}
	key := path.Clean(u.Path)
	if !strings.HasPrefix(key, KeyPrefix) {
		return "", ErrForeignURL
	}
	return key, nil
}

// Remove deletes the object behind a public URL.
func (s *MediaStore) Remove(ctx context.Context, publicURL string) error {
	key, err := s.KeyFromURL(publicURL)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: remove: %w", err)
	}
	return nil
}
