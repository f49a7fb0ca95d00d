package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
}

// S3Bucket writes public-read objects to any S3-compatible endpoint.
type S3Bucket struct {
	client  s3API
	bucket  string
	baseURL string
}

func NewS3(ctx context.Context, o S3Options) (*S3Bucket, error) {
	if o.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(o.Region)}
	if o.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = o.UsePathStyle
	})
	return newS3Bucket(client, o), nil
}

func newS3Bucket(client s3API, o S3Options) *S3Bucket {
	return &S3Bucket{client: client, bucket: o.Bucket, baseURL: publicBase(o)}
}

// publicBase falls back to the virtual-hosted AWS URL when no CDN/public base is set.
func publicBase(o S3Options) string {
	if o.PublicBaseURL != "" {
		return strings.TrimRight(o.PublicBaseURL, "/")
	}
	if o.Endpoint != "" {
		return strings.TrimRight(o.Endpoint, "/") + "/" + o.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", o.Bucket, o.Region)
}

func (b *S3Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	return nil
}

func (b *S3Bucket) PublicURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return b.baseURL + "/" + strings.Join(parts, "/")
}
