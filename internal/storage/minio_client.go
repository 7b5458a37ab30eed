package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"citizenpress/internal/config"
)

const (
	FolderPostMedia = "post-images"
	FolderEPapers   = "epaper-files"
)

// Storage is the blob store used for post media and archive documents.
type Storage interface {
	Upload(ctx context.Context, folder string, upload *Upload) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// StoredObject identifies a stored blob by its key and public URL.
type StoredObject struct {
	Key string
	URL string
}

type MinIOClient struct {
	client  *minio.Client
	bucket  string
	baseURL string
	log     *zap.Logger
}

func NewMinIOClient(cfg *config.Config, log *zap.Logger) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOClient{
		client:  client,
		bucket:  cfg.MinIO.BucketName,
		baseURL: cfg.MinIO.PublicBaseURL,
		log:     log,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (m *MinIOClient) EnsureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}

	m.log.Info("created bucket", zap.String("bucket", m.bucket))
	return nil
}

func (m *MinIOClient) Upload(ctx context.Context, folder string, upload *Upload) (*StoredObject, error) {
	now := time.Now()
	key := objectKey(folder, upload.FileName, now)

	_, err := m.client.PutObject(ctx, m.bucket, key, upload.Reader, upload.Size,
		minio.PutObjectOptions{
			ContentType: upload.ContentType,
			UserMetadata: map[string]string{
				"original-filename": upload.FileName,
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	m.log.Debug("stored object", zap.String("key", key), zap.Int64("size", upload.Size))

	return &StoredObject{Key: key, URL: objectURL(m.baseURL, m.bucket, key)}, nil
}

func (m *MinIOClient) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{GovernanceBypass: true})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// objectKey builds folder/YYYY/MM/<uuid><ext>.
func objectKey(folder, fileName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))

	return fmt.Sprintf("%s/%d/%02d/%s%s",
		folder,
		now.Year(),
		now.Month(),
		uuid.New().String(),
		ext)
}

func objectURL(baseURL, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(baseURL, "/"), bucket, key)
}

var _ Storage = (*MinIOClient)(nil)
