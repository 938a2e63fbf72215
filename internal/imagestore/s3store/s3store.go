// Package s3store keeps place images in an S3 compatible bucket.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/vbonduro/placeoffers/internal/imagestore"
)

// maxPresignExpiry is the SigV4 upper bound.
const maxPresignExpiry = 7 * 24 * time.Hour

type Config struct {
	// Endpoint overrides the AWS endpoint, e.g. for R2 or MinIO.
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicURL serves objects directly. Without it URL presigns.
	PublicURL string
}

type S3ImageStore struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	endpoint      string
	publicURL     string
	logger        *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *S3ImageStore {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg := aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	logger.Info("initialized s3 image store",
		"bucket", cfg.Bucket,
		"endpoint", cfg.Endpoint,
		"public_url", cfg.PublicURL,
	)

	return &S3ImageStore{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/"),
		publicURL:     strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:        logger,
	}
}

func (s *S3ImageStore) Save(ctx context.Context, key, mimeType string, r io.Reader) error {
	if err := imagestore.ValidateKey(key); err != nil {
		return &imagestore.StorageError{Op: "Save", Key: key, Err: err}
	}

	// PutObject needs a seekable body to sign the payload over plain HTTP.
	data, err := io.ReadAll(r)
	if err != nil {
		return &imagestore.StorageError{Op: "Save", Key: key, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	result, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimeType),
	})
	if err != nil {
		return &imagestore.StorageError{Op: "Save", Key: key, Err: wrapS3Error(err)}
	}

	s.logger.Debug("stored object in s3",
		"key", key,
		"etag", aws.ToString(result.ETag),
		"content_type", mimeType,
	)
	return nil
}

func (s *S3ImageStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := imagestore.ValidateKey(key); err != nil {
		return nil, "", &imagestore.StorageError{Op: "Get", Key: key, Err: err}
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", &imagestore.StorageError{Op: "Get", Key: key, Err: wrapS3Error(err)}
	}

	contentType := aws.ToString(result.ContentType)
	if contentType == "" {
		contentType = imagestore.MediaTypeForExt(key)
	}
	return result.Body, contentType, nil
}

// Delete is idempotent; S3 reports no error for a missing key.
func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	if err := imagestore.ValidateKey(key); err != nil {
		return &imagestore.StorageError{Op: "Delete", Key: key, Err: err}
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &imagestore.StorageError{Op: "Delete", Key: key, Err: wrapS3Error(err)}
	}

	s.logger.Debug("deleted object from s3", "key", key)
	return nil
}

func (s *S3ImageStore) URL(ctx context.Context, key string) (string, error) {
	if err := imagestore.ValidateKey(key); err != nil {
		return "", &imagestore.StorageError{Op: "URL", Key: key, Err: err}
	}

	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}

	request, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(maxPresignExpiry))
	if err != nil {
		return "", &imagestore.StorageError{Op: "URL", Key: key, Err: fmt.Errorf("failed to presign: %w", err)}
	}
	return request.URL, nil
}

func (s *S3ImageStore) KeyForURL(rawURL string) (string, bool) {
	if s.publicURL != "" {
		return imagestore.KeyUnderBase(s.publicURL, rawURL)
	}
	if s.endpoint == "" {
		return "", false
	}

	// Presigned path-style URL: <endpoint>/<bucket>/<key>?X-Amz-...
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	u.RawQuery = ""
	return imagestore.KeyUnderBase(s.endpoint+"/"+s.bucket, u.String())
}

func wrapS3Error(err error) error {
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return imagestore.ErrNotFound
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return imagestore.ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return imagestore.ErrNotFound
		}
		var httpErr interface{ HTTPStatusCode() int }
		if errors.As(err, &httpErr) && httpErr.HTTPStatusCode() == http.StatusNotFound {
			return imagestore.ErrNotFound
		}
	}

	return fmt.Errorf("s3 operation failed: %w", err)
}
