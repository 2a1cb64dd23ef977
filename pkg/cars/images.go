package cars

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ImageStore persists car listing images and serves them back
type ImageStore interface {
	// Put stores image bytes under key and returns the public URL
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Get retrieves previously stored image bytes
	Get(ctx context.Context, key string) ([]byte, error)
}

// FilesystemImageStore stores images under a local directory
type FilesystemImageStore struct {
	dir     string
	baseURL string
}

// NewFilesystemImageStore creates a filesystem-backed image store
func NewFilesystemImageStore(dir, baseURL string) (*FilesystemImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &FilesystemImageStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Put stores image bytes under key
func (f *FilesystemImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path := filepath.Join(f.dir, filepath.Clean("/"+key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create image subdirectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return f.baseURL + "/" + key, nil
}

// Get retrieves image bytes by key
func (f *FilesystemImageStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, filepath.Clean("/"+key)))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// S3Config holds S3 image storage settings
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	BaseURL      string
}

// S3ImageStore stores images in an S3 bucket (or MinIO)
type S3ImageStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3ImageStore creates an S3-backed image store
func NewS3ImageStore(ctx context.Context, cfg S3Config) (*S3ImageStore, error) {
	var awsCfg aws.Config
	var err error

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		// Static credentials (MinIO or AWS with explicit keys)
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey, cfg.SecretKey, "",
			)),
		)
	} else {
		// Default credential chain (IAM roles, env vars)
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	return &S3ImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// Put uploads image bytes to the bucket
func (s *S3ImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// Get downloads image bytes from the bucket
func (s *S3ImageStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer out.Body.Close()

	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	return buf.Bytes(), nil
}

// CachedImageStore wraps an ImageStore with an in-process LRU over reads.
// Listing images are immutable once uploaded, so entries never go stale.
type CachedImageStore struct {
	inner ImageStore
	cache *lru.Cache[string, []byte]
}

// NewCachedImageStore wraps inner with an LRU of size entries
func NewCachedImageStore(inner ImageStore, size int) (*CachedImageStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedImageStore{inner: inner, cache: cache}, nil
}

// Put writes through and primes the cache
func (c *CachedImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	url, err := c.inner.Put(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, data)
	return url, nil
}

// Get serves from the LRU when possible
func (c *CachedImageStore) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := c.cache.Get(key); ok {
		return data, nil
	}
	data, err := c.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, data)
	return data, nil
}
