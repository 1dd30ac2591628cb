package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/logger"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultPresignExpiry is how long generated retrieval URLs stay valid.
const DefaultPresignExpiry = 24 * time.Hour

// Config holds object storage settings for batch archives.
type Config struct {
	// Endpoint is the MinIO server address (e.g. "minio:9000").
	Endpoint string `yaml:"endpoint"`
	// AccessKey for MinIO authentication.
	AccessKey string `yaml:"access_key"`
	// SecretKey for MinIO authentication.
	SecretKey string `yaml:"secret_key"`
	// UseSSL enables HTTPS for MinIO connections.
	UseSSL bool `yaml:"use_ssl"`
	// Bucket is the bucket for batch archives.
	Bucket string `yaml:"bucket"`
}

// NewConfig returns an archive configuration with default values.
func NewConfig() *Config {
	return &Config{
		Endpoint: "localhost:9000",
		Bucket:   "article-archives",
	}
}

// Result is the retrieval handle for an uploaded archive.
type Result struct {
	// URL is a public-style locator for the archived object.
	URL string
	// Key is the object key within the bucket.
	Key string
	// UploadedAt is the upload timestamp used in the key partition.
	UploadedAt time.Time
}

// Archiver packages article batches and uploads them to object storage.
type Archiver struct {
	client *miniogo.Client
	config *Config
	logger logger.Interface
	now    func() time.Time
}

// NewArchiver creates a batch archiver. The MinIO client connection is owned
// by the archiver for its lifetime.
func NewArchiver(cfg *Config, log logger.Interface) (*Archiver, error) {
	if cfg == nil {
		return nil, errors.New("archive config is nil")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Archiver{
		client: client,
		config: cfg,
		logger: log,
		now:    time.Now,
	}, nil
}

// ObjectKey partitions archives by category and upload date.
// Format: {category}/{yyyy}/{mm}/{dd}/{run_id}.zip
func ObjectKey(category domain.Category, runID string, uploadedAt time.Time) string {
	return fmt.Sprintf("%s/%s/%s.zip",
		category,
		uploadedAt.Format("2006/01/02"),
		runID)
}

// Archive builds the container for the batch and uploads it. Upload failure
// propagates as a hard error; the orchestrator downgrades it to a logged,
// non-fatal condition. Empty batches are rejected up front.
func (a *Archiver) Archive(
	ctx context.Context,
	articles []*domain.Article,
	runID string,
	category domain.Category,
) (*Result, error) {
	container, manifest, err := BuildContainer(articles, runID, category)
	if err != nil {
		return nil, err
	}

	uploadedAt := a.now().UTC()
	objectKey := ObjectKey(category, runID, uploadedAt)

	_, err = a.client.PutObject(
		ctx,
		a.config.Bucket,
		objectKey,
		bytes.NewReader(container),
		int64(len(container)),
		miniogo.PutObjectOptions{
			ContentType: "application/zip",
			UserMetadata: map[string]string{
				"run-id":      runID,
				"category":    string(category),
				"uploaded-at": uploadedAt.Format(time.RFC3339),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upload archive: %w", err)
	}

	a.logger.Info("Uploaded batch archive",
		"bucket", a.config.Bucket,
		"key", objectKey,
		"articles", manifest.ArticleCount,
		"bytes", len(container))

	return &Result{
		URL:        a.objectURL(objectKey),
		Key:        objectKey,
		UploadedAt: uploadedAt,
	}, nil
}

// objectURL builds a public-style locator for the object.
func (a *Archiver) objectURL(objectKey string) string {
	scheme := "http"
	if a.config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, a.config.Endpoint, a.config.Bucket, objectKey)
}

// PresignedURL generates a time-limited retrieval URL for an archive key.
func (a *Archiver) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}

	presigned, err := a.client.PresignedGetObject(ctx, a.config.Bucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign archive URL: %w", err)
	}

	return presigned.String(), nil
}

// HealthCheck verifies object storage connectivity and bucket existence.
func (a *Archiver) HealthCheck(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.config.Bucket)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", a.config.Bucket)
	}
	return nil
}
