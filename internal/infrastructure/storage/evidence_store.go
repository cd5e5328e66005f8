package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"patroltrack/internal/config"
)

// EvidenceStore hands out presigned PUT URLs for incident photo evidence on
// an S3-compatible bucket. The rest of the system only ever sees the object
// key; binaries never pass through the backend.
type EvidenceStore struct {
	client *s3.Client
	cfg    *config.StorageConfig
}

// PresignedUpload is the response handed to a client about to upload.
type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

const maxImageSize = 10 << 20

func NewEvidenceStore(cfg *config.StorageConfig) *EvidenceStore {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		Region: cfg.Region,
	})

	return &EvidenceStore{
		client: client,
		cfg:    cfg,
	}
}

// PresignUpload validates the declared type/size and returns a presigned PUT
// URL together with the opaque key the incident report should reference.
func (s *EvidenceStore) PresignUpload(ctx context.Context, username, fileName, contentType string, fileSize int64) (*PresignedUpload, error) {
	if _, ok := allowedImageTypes[strings.ToLower(contentType)]; !ok {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}
	if fileSize <= 0 || fileSize > maxImageSize {
		return nil, fmt.Errorf("file size %d exceeds the %d byte limit", fileSize, maxImageSize)
	}

	key := s.objectKey(username, fileName)
	expiry := time.Duration(s.cfg.PresignExpiryMinutes) * time.Minute

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		FileURL:   fmt.Sprintf("%s/%s", s.cfg.PublicBaseURL, key),
		Key:       key,
		ExpiresIn: int(expiry.Seconds()),
	}, nil
}

// Exists reports whether an uploaded object is present in the bucket.
func (s *EvidenceStore) Exists(ctx context.Context, key string) bool {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

func (s *EvidenceStore) objectKey(username, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("evidence/%s/%d_%s%s", username, time.Now().Unix(), uuid.New().String(), ext)
}
