package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
)

// GCSStore persists blobs in a Cloud Storage bucket.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	prefix  string
	baseURL string
}

// NewGCSStore wraps client for bucket. Object names are prefixed with prefix
// and public URLs default to the storage.googleapis.com host.
func NewGCSStore(client *gcs.Client, bucket, prefix, baseURL string) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("storage: gcs client is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage: gcs bucket is required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{client: client, bucket: bucket, prefix: strings.Trim(strings.TrimSpace(prefix), "/"), baseURL: baseURL}, nil
}

// Write uploads data to key and returns the canonicalized key.
func (s *GCSStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	w := s.client.Bucket(s.bucket).Object(s.objectName(cleanKey)).NewWriter(ctx)
	if ct := mime.TypeByExtension(path.Ext(cleanKey)); ct != "" {
		w.ContentType = ct
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: gcs write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: gcs close: %w", err)
	}
	return cleanKey, nil
}

// Read downloads the object stored at key.
func (s *GCSStore) Read(ctx context.Context, key string) ([]byte, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	r, err := s.client.Bucket(s.bucket).Object(s.objectName(cleanKey)).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("storage: %s: %w", cleanKey, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: gcs open: %w", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: gcs read: %w", err)
	}
	return data, nil
}

// URL returns the public address of key.
func (s *GCSStore) URL(key string) string {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return ""
	}
	return joinURL(s.baseURL, s.objectName(cleanKey))
}

func (s *GCSStore) objectName(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

var _ BlobStore = (*GCSStore)(nil)
