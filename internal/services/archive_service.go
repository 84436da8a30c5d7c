package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	appconfig "zibana-backend/internal/config"
	"zibana-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveSource lists audit entries newer than a watermark, oldest first
type ArchiveSource interface {
	ListCreatedAfter(ctx context.Context, after time.Time) ([]*models.AuditLogEntry, error)
}

// ObjectUploader is the slice of the S3 API the archiver uses
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// AuditArchiver periodically exports new audit entries as JSON objects to
// S3-compatible storage (R2) for off-site compliance retention. The audit
// table remains the source of truth; the export is additive only.
type AuditArchiver struct {
	Source   ArchiveSource
	Interval time.Duration
	Bucket   string

	uploader ObjectUploader

	mu        sync.Mutex
	watermark time.Time
	stop      chan struct{}
}

// NewAuditArchiver builds an archiver from config. Returns an error when the
// S3 client cannot be configured.
func NewAuditArchiver(cfg *appconfig.Config, source ArchiveSource) (*AuditArchiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Archive.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure archive client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
		}
	})

	return &AuditArchiver{
		Source:    source,
		Interval:  cfg.ArchiveInterval(),
		Bucket:    cfg.Archive.Bucket,
		uploader:  client,
		watermark: time.Now().UTC(),
		stop:      make(chan struct{}),
	}, nil
}

// Start runs the export loop until Stop is called
func (a *AuditArchiver) Start() {
	ticker := time.NewTicker(a.Interval)
	log.Printf("[AuditArchive] started (interval: %v, bucket: %s)", a.Interval, a.Bucket)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := a.RunExport(context.Background()); err != nil {
					log.Printf("[AuditArchive] export failed: %v", err)
				}
			case <-a.stop:
				log.Println("[AuditArchive] stopped")
				return
			}
		}
	}()
}

// Stop terminates the export loop
func (a *AuditArchiver) Stop() {
	close(a.stop)
}

// RunExport uploads all entries newer than the watermark as one JSON object.
// The watermark only advances on a successful upload, so a failed export is
// retried in full on the next tick.
func (a *AuditArchiver) RunExport(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := a.Source.ListCreatedAfter(ctx, a.watermark)
	if err != nil {
		return fmt.Errorf("list audit entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode audit export: %w", err)
	}

	latest := entries[len(entries)-1].CreatedAt
	key := fmt.Sprintf("audit/%s/%s.json", latest.Format("2006/01/02"), latest.Format("150405.000000000"))

	_, err = a.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	a.watermark = latest
	log.Printf("[AuditArchive] exported %d entries to %s", len(entries), key)
	return nil
}
