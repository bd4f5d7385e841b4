// Package export uploads CSV exports of milk production records to
// S3-compatible object storage and hands back a presigned download link.
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/milktracker/internal/models"
	sc "github.com/dmitrijs2005/milktracker/internal/server/config"
	"github.com/google/uuid"
)

// LinkValidity is how long a presigned download link stays usable.
const LinkValidity = 15 * time.Minute

// Uploader stores an export body and returns where to fetch it.
type Uploader interface {
	Upload(ctx context.Context, userID int64, body []byte) (*models.Export, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// S3Exporter is the Uploader backed by an S3 bucket (MinIO in development).
type S3Exporter struct {
	config *sc.Config
}

func NewS3Exporter(cfg *sc.Config) *S3Exporter {
	return &S3Exporter{config: cfg}
}

// StorageKey builds an object key unique per export, grouped by user and day.
func StorageKey(userID int64) string {
	d := now()
	return fmt.Sprintf("exports/%d/%d/%02d/%02d/%v.csv", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (e *S3Exporter) clients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(e.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			e.config.S3RootUser,
			e.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(e.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})
	return client, newS3PresignClient(client), nil
}

// Upload puts body under a fresh key and presigns a GET for it.
func (e *S3Exporter) Upload(ctx context.Context, userID int64, body []byte) (*models.Export, error) {
	client, presigner, err := e.clients(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	bucket := e.config.S3Bucket
	key := StorageKey(userID)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	req, err := presignGetObject(presigner, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(LinkValidity))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	return &models.Export{Key: key, URL: req.URL}, nil
}
