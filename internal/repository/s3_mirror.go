package repository

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"office-web-server/internal/domain"
)

type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror copies saved documents into an S3-compatible bucket.
type S3Mirror struct {
	client s3PutAPI
	bucket string
	prefix string
}

// NewS3Mirror builds an S3 client from the mirror settings. A custom endpoint
// switches to path-style addressing for MinIO and similar servers.
func NewS3Mirror(ctx context.Context, cfg domain.S3Config) (*S3Mirror, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Mirror(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Mirror(client s3PutAPI, bucket, prefix string) *S3Mirror {
	return &S3Mirror{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (m *S3Mirror) Name() string {
	return "s3"
}

func (m *S3Mirror) objectKey(filename string) string {
	if m.prefix == "" {
		return filename
	}
	return path.Join(m.prefix, filename)
}

// Put uploads the document as an HTML object
func (m *S3Mirror) Put(ctx context.Context, doc *domain.Document) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(m.objectKey(doc.Filename)),
		Body:          strings.NewReader(doc.Content),
		ContentLength: aws.Int64(int64(len(doc.Content))),
		ContentType:   aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", doc.Filename, err)
	}
	return nil
}
