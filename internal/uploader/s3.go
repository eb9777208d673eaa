// Package uploader pushes locally staged media files to S3-compatible
// object storage and returns a durable public URL. The local temp file is
// removed on every exit path, success or failure.
package uploader

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/vidverse/user-service/internal/config"
)

// S3Uploader holds the connection parameters for the media bucket. All
// values come from the injected application config.
type S3Uploader struct {
	region     string
	bucket     string
	accessKey  string
	secretKey  string
	endpoint   string // empty for AWS
	publicBase string // empty -> derived from bucket/region or endpoint
}

func NewS3Uploader(cfg config.Config) *S3Uploader {
	return &S3Uploader{
		region:     cfg.S3Region,
		bucket:     cfg.S3Bucket,
		accessKey:  cfg.S3AccessKey,
		secretKey:  cfg.S3SecretKey,
		endpoint:   cfg.S3Endpoint,
		publicBase: cfg.S3PublicBase,
	}
}

func (u *S3Uploader) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(u.region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.accessKey, u.secretKey, "")))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if u.endpoint != "" {
			o.BaseEndpoint = aws.String(u.endpoint)
			o.UsePathStyle = true // MinIO and friends
		}
	}), nil
}

// storageKey buckets uploads by date so the bucket stays browsable.
func storageKey(ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("media/%d/%d/%d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// Upload pushes the file at localPath to the bucket and returns its public
// URL. An empty path returns ("", nil) so optional assets can be skipped
// with no special casing at the call site. The local file is always
// removed before returning.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", nil
	}
	defer os.Remove(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cl, err := u.client(ctx)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(localPath)
	key := storageKey(ext)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = cl.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return u.objectURL(key), nil
}

func (u *S3Uploader) objectURL(key string) string {
	if u.publicBase != "" {
		return strings.TrimSuffix(u.publicBase, "/") + "/" + key
	}
	if u.endpoint != "" {
		return strings.TrimSuffix(u.endpoint, "/") + "/" + u.bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
