package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "rentshop-backend/internal/config"
)

// R2Archive stores generated invoices in a Cloudflare R2 bucket through the
// S3 API. A nil archive (missing credentials) turns every call into a no-op.
type R2Archive struct {
	client *s3.Client
	bucket string
}

// NewR2Archive builds the archive from config. Returns nil when R2 is not
// configured; callers must handle a nil receiver.
func NewR2Archive(cfg *appconfig.Config) *R2Archive {
	if cfg.R2.AccessKey == "" || cfg.R2.SecretKey == "" || cfg.R2.Bucket == "" {
		log.Println("[R2] credentials not configured, invoice archive disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2.AccessKey,
			cfg.R2.SecretKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		log.Printf("[R2] client configuration failed, invoice archive disabled: %v", err)
		return nil
	}

	endpoint := cfg.R2.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2.AccountID)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &R2Archive{client: client, bucket: cfg.R2.Bucket}
}

// StoreInvoice uploads an invoice PDF under invoices/<invoice-number>.pdf.
func (a *R2Archive) StoreInvoice(ctx context.Context, invoiceNumber string, pdf []byte) error {
	if a == nil {
		return nil
	}
	key := fmt.Sprintf("invoices/%s.pdf", invoiceNumber)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("r2 upload of %s failed: %w", key, err)
	}
	log.Printf("[R2] archived %s (%d bytes)", key, len(pdf))
	return nil
}
