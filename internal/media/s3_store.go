package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3Store implements Store on top of AWS S3.
type s3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	logger  zerolog.Logger
}

// NewS3Store creates an S3-backed media store. baseURL overrides the
// public URL prefix (e.g. a CDN domain); when empty, the bucket's
// virtual-hosted URL is used.
func NewS3Store(ctx context.Context, bucket, region, baseURL string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-media-store").Logger()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 media store initialised")

	return &s3Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Upload writes the object and returns its public URL.
func (s *s3Store) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to upload object to S3")
		return "", fmt.Errorf("failed to upload object to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	url := s.baseURL + "/" + key

	s.logger.Debug().
		Str("key", key).
		Str("url", url).
		Msg("object uploaded")

	return url, nil
}
