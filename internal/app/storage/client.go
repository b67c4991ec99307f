package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"callchat/internal/pkg/logx"
)

// s3Client implements StorageService against any S3-compatible endpoint.
type s3Client struct {
	cfg     ServiceConfig
	client  *s3.Client
	presign *s3.PresignClient
	logger  zerolog.Logger
}

func newS3Client(ctx context.Context, cfg ServiceConfig) (*s3Client, error) {
	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Client{
		cfg:     cfg,
		client:  client,
		presign: s3.NewPresignClient(client),
		logger:  logx.Component("storage"),
	}, nil
}

func (c *s3Client) PresignUpload(
	ctx context.Context,
	key string,
	mimeType string,
	fileSize int64,
	duration time.Duration,
) (string, error) {
	resp, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.S3BucketName),
		Key:           aws.String(key),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(fileSize),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("Failed to presign upload.")
		return "", fmt.Errorf("presign upload %s: %w", key, err)
	}

	return resp.URL, nil
}

func (c *s3Client) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	resp, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.cfg.S3BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return ObjectInfo{}, ErrObjectNotFound
		}
		c.logger.Error().Err(err).Str("key", key).Msg("Failed to fetch object metadata.")
		return ObjectInfo{}, fmt.Errorf("head %s: %w", key, err)
	}

	return ObjectInfo{
		ContentType: aws.ToString(resp.ContentType),
		Size:        aws.ToInt64(resp.ContentLength),
	}, nil
}

func (c *s3Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.S3BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("Failed to delete object.")
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

func (c *s3Client) PublicURL(key string) string {
	return publicURL(c.cfg.PublicURL, key)
}

func (c *s3Client) KeyFromURL(url string) (string, bool) {
	return keyFromURL(c.cfg.PublicURL, url)
}
