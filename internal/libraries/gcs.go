package libraries

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient builds a storage client from the base64 encoded service
// account JSON in GCP_SERVICE_ACCOUNT_CREDENTIALS.
func NewGCSClient(ctx context.Context) (*storage.Client, error) {
	// read base64 encoded JSON
	encoded := os.Getenv("GCP_SERVICE_ACCOUNT_CREDENTIALS")
	if encoded == "" {
		return nil, fmt.Errorf("GCP_SERVICE_ACCOUNT_CREDENTIALS not set")
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode service account json: %w", err)
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(decoded))
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return client, nil
}

// GCSFileStore uploads files to a Cloud Storage bucket.
type GCSFileStore struct {
	client *storage.Client
	bucket string
}

func NewGCSFileStore(client *storage.Client, bucket string) *GCSFileStore {
	return &GCSFileStore{client: client, bucket: bucket}
}

func (s *GCSFileStore) Save(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload to gcs: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize gcs upload: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectPath), nil
}

func (s *GCSFileStore) Close() error {
	return s.client.Close()
}
