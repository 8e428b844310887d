package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Folders images may be uploaded into.
var Folders = map[string]bool{
	"businesses":    true,
	"professionals": true,
	"posts":         true,
	"products":      true,
	"avatars":       true,
}

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrUnknownFolder   = errors.New("unknown upload folder")
)

// ImageUploader stores listing and profile images.
type ImageUploader interface {
	UploadImage(ctx context.Context, body io.Reader, size int64, folder, userID, filename string) (*UploadResult, error)
}

// objectPutter is the part of the S3 client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// UploadResult contains the result of an upload
type UploadResult struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Size   int64  `json:"size"`
}

// S3Uploader uploads images to a single bucket.
type S3Uploader struct {
	client  objectPutter
	bucket  string
	region  string
	baseURL string
	now     func() time.Time
}

var _ ImageUploader = (*S3Uploader)(nil)

// NewS3Uploader creates an uploader using the default AWS credential chain.
// baseURL defaults to the bucket's virtual-hosted URL.
func NewS3Uploader(ctx context.Context, region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newS3Uploader(s3.NewFromConfig(cfg), region, bucket, baseURL), nil
}

func newS3Uploader(client objectPutter, region, bucket, baseURL string) *S3Uploader {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Uploader{
		client:  client,
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

// UploadImage stores the image under folder/{year}/{month}/{userID}/{uuid}{ext}.
func (u *S3Uploader) UploadImage(ctx context.Context, body io.Reader, size int64, folder, userID, filename string) (*UploadResult, error) {
	if !Folders[folder] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFolder, folder)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	contentType := ContentTypeForImage(ext)
	if contentType == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}

	now := u.now()
	key := fmt.Sprintf("%s/%d/%02d/%s/%s%s", folder, now.Year(), now.Month(), userID, uuid.New().String(), ext)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("max-age=86400"),
		Metadata: map[string]string{
			"user-id":           userID,
			"original-filename": filename,
			"upload-timestamp":  now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:    key,
		URL:    u.baseURL + "/" + key,
		Bucket: u.bucket,
		Size:   size,
	}, nil
}

// ContentTypeForImage returns "" for extensions that are not accepted images.
func ContentTypeForImage(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
