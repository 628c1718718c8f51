package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

// AudioStore wraps the GCS bucket holding uploaded podcast episodes. The
// transcription providers never see raw bytes; they get either the gs:// URI
// (GCP Speech) or a time-limited signed URL (HTTP providers).
type AudioStore interface {
	Upload(ctx context.Context, key string, file io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	GCSURI(key string) string
	SignedURL(key string, ttl time.Duration) (string, error)
}

type audioStore struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
}

func NewAudioStore(log *logger.Logger) (AudioStore, error) {
	bucketName := strings.TrimSpace(os.Getenv("AUDIO_GCS_BUCKET_NAME"))
	if bucketName == "" {
		return nil, fmt.Errorf("missing env var AUDIO_GCS_BUCKET_NAME")
	}

	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))

	stClient, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog := log.With("service", "AudioStore")
	serviceLog.Info("Audio storage initialized", "bucket", bucketName)

	return &audioStore{
		log:           serviceLog,
		storageClient: stClient,
		bucketName:    bucketName,
	}, nil
}

func (as *audioStore) Upload(ctx context.Context, key string, file io.Reader, contentType string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty object key")
	}

	w := as.storageClient.Bucket(as.bucketName).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload %s: %w", key, err)
	}

	as.log.Info("Audio uploaded", "key", key, "content_type", contentType)
	return nil
}

func (as *audioStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := as.storageClient.Bucket(as.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	return r, nil
}

func (as *audioStore) Delete(ctx context.Context, key string) error {
	err := as.storageClient.Bucket(as.bucketName).Object(key).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (as *audioStore) GCSURI(key string) string {
	return fmt.Sprintf("gs://%s/%s", as.bucketName, strings.TrimLeft(key, "/"))
}

func (as *audioStore) SignedURL(key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	u, err := as.storageClient.Bucket(as.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %s: %w", key, err)
	}
	return u, nil
}
