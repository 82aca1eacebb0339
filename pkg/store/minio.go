package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds connection settings for S3-compatible storage.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
}

// WithEnv fills unset fields from EDGEPERSIST_S3_* variables.
func (c MinIOConfig) WithEnv() MinIOConfig {
	set := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	set(&c.Endpoint, "EDGEPERSIST_S3_ENDPOINT")
	set(&c.AccessKey, "EDGEPERSIST_S3_ACCESS_KEY")
	set(&c.SecretKey, "EDGEPERSIST_S3_SECRET_KEY")
	set(&c.Region, "EDGEPERSIST_S3_REGION")
	return c
}

// MinIO serves snapshots from objects under a bucket prefix.
type MinIO struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIO wraps an existing client.
// prefix is prepended to all snapshot ids (e.g. "daily/").
func NewMinIO(client *minio.Client, bucket, prefix string) *MinIO {
	return &MinIO{client: client, bucket: bucket, prefix: prefix}
}

// DialMinIO creates a client from cfg.
func DialMinIO(cfg MinIOConfig, bucket, prefix string) (*MinIO, error) {
	cfg = cfg.WithEnv()
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 location needs an endpoint (config [minio] endpoint or EDGEPERSIST_S3_ENDPOINT)")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return NewMinIO(client, bucket, prefix), nil
}

func (s *MinIO) key(id string) string {
	return path.Join(s.prefix, id)
}

// Open streams the object for id. Missing objects map to os.ErrNotExist.
func (s *MinIO) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	key := s.key(id)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinIOError(err)
	}
	// GetObject is lazy; Stat surfaces a missing key before decoding starts.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, mapMinIOError(err)
	}
	return obj, nil
}

// List returns object names directly under the prefix, sorted.
func (s *MinIO) List(ctx context.Context) ([]string, error) {
	root := s.prefix
	if root != "" && !strings.HasSuffix(root, "/") {
		root += "/"
	}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: root}) {
		if obj.Err != nil {
			return nil, mapMinIOError(obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, root)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// String returns the s3:// URL of the location.
func (s *MinIO) String() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

func mapMinIOError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return fmt.Errorf("%w: %v", os.ErrNotExist, err)
	}
	return err
}
