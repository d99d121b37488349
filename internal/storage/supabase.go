package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/config"
)

// ObjectStore abstracts attachment storage. The production implementation
// speaks the Supabase Storage REST API; tests swap in a fake.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PublicURL(key string) string
}

// Supabase wraps minimal calls to the Supabase Storage REST API.
//
// A service key that is a legacy service_role JWT needs both the apikey
// and Authorization headers; a secret API key only needs apikey, but the
// extra header is harmless.
type Supabase struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

// NewSupabase builds a storage client from config.
func NewSupabase(cfg config.StorageConfig) *Supabase {
	return &Supabase{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		bucket:  cfg.Bucket,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// RandomKey generates an object key for an upload: a random name that
// keeps the original file extension.
func RandomKey(filename string) string {
	return uuid.NewString() + path.Ext(filename)
}

// Upload sends a new object to POST /storage/v1/object/{bucket}/{key}.
func (s *Supabase) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("storage upload error: %s | %s", res.Status, string(body))
	}
	return nil
}

// PublicURL returns the public download URL for an object. The bucket is
// expected to be public; signed URLs are not used anywhere.
func (s *Supabase) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}
