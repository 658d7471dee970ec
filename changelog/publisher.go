package changelog

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.vocdoni.io/dvote/log"
)

// PublisherConfig holds the settings of the S3 compatible storage where the
// changelog is published.
type PublisherConfig struct {
	// Endpoint overrides the S3 endpoint, e.g. for MinIO. Empty means AWS.
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PathStyle addresses the bucket in the path instead of the host name.
	PathStyle bool
}

// Publisher uploads rendered changelogs to a bucket.
type Publisher struct {
	bucket   string
	uploader *manager.Uploader
}

// NewPublisher creates a publisher. Without static keys the default AWS
// credentials chain is used.
func NewPublisher(ctx context.Context, conf *PublisherConfig) (*Publisher, error) {
	if conf == nil || conf.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	opts := []func(*config.LoadOptions) error{}
	if conf.Region != "" {
		opts = append(opts, config.WithRegion(conf.Region))
	}
	if conf.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot load storage config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.UsePathStyle = conf.PathStyle
	})
	return &Publisher{
		bucket:   conf.Bucket,
		uploader: manager.NewUploader(client),
	}, nil
}

// Publish renders the changelog in the given format and uploads it under
// key. It returns the location of the uploaded object.
func (p *Publisher) Publish(ctx context.Context, cl *Changelog, key, format string) (string, error) {
	data, contentType, err := cl.Render(format)
	if err != nil {
		return "", err
	}
	out, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("cannot upload changelog: %w", err)
	}
	log.Infow("changelog published", "bucket", p.bucket, "key", key, "location", out.Location)
	return out.Location, nil
}
