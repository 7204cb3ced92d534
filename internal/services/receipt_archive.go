package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type ArchiveConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// ReceiptArchive writes a JSON copy of every committed receipt to object
// storage. The database row stays the source of truth.
type ReceiptArchive struct {
	client objectPutter
	bucket string
	prefix string
}

func NewS3ReceiptArchive(ctx context.Context, cfg ArchiveConfig) (*ReceiptArchive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("receipt archive bucket is required")
	}

	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newReceiptArchive(client, cfg.Bucket, cfg.Prefix), nil
}

func newReceiptArchive(client objectPutter, bucket, prefix string) *ReceiptArchive {
	if prefix == "" {
		prefix = "receipts"
	}
	return &ReceiptArchive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (a *ReceiptArchive) OnReceiptGenerated(ctx context.Context, receipt *models.Receipt) error {
	_, err := a.Archive(ctx, receipt)
	return err
}

// Archive uploads the receipt and returns its object key.
func (a *ReceiptArchive) Archive(ctx context.Context, receipt *models.Receipt) (string, error) {
	body, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("marshal receipt: %w", err)
	}

	key := a.ObjectKey(receipt)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload receipt %s: %w", receipt.ID, err)
	}
	return key, nil
}

func (a *ReceiptArchive) ObjectKey(receipt *models.Receipt) string {
	created := receipt.CreatedAt.UTC()
	return path.Join(
		a.prefix,
		fmt.Sprintf("mentor-%d", receipt.MentorID),
		fmt.Sprintf("%04d/%02d", created.Year(), created.Month()),
		receipt.ID+".json",
	)
}
