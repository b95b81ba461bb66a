package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/agroreq/export-requirements-backend/config"
)

// S3Store is a BlobStore backed by an S3-compatible bucket. Objects are
// public-read; the returned URL is publicBaseURL + "/" + path.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Store builds an S3Store from environment configuration:
// S3_BUCKET (required), S3_REGION, S3_PUBLIC_BASE_URL, and optionally
// S3_ENDPOINT + S3_ACCESS_KEY/S3_SECRET_KEY for S3-compatible providers.
func NewS3Store(ctx context.Context, cfg map[string]string) (*S3Store, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	region := config.GetString(cfg, "S3_REGION", "us-east-1")
	endpoint := config.GetString(cfg, "S3_ENDPOINT", "")
	accessKey := config.GetString(cfg, "S3_ACCESS_KEY", "")
	secretKey := config.GetString(cfg, "S3_SECRET_KEY", "")

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			// Most S3-compatible providers require path-style addressing.
			o.UsePathStyle = config.GetBool(cfg, "S3_PATH_STYLE", true)
		}
	})

	publicBaseURL := config.GetString(cfg, "S3_PUBLIC_BASE_URL", "")
	if publicBaseURL == "" {
		if endpoint != "" {
			publicBaseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(endpoint, "/"), bucket)
		} else {
			publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
		}
	}

	return &S3Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", path, err)
	}

	url := fmt.Sprintf("%s/%s", s.publicBaseURL, path)
	log.Debug().Str("path", path).Str("url", url).Msg("Uploaded document")
	return url, nil
}

func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}
