// Package reliability keeps run artifacts safe: off-site export and ledger upkeep.
package reliability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/okushigue/rzqr/internal/domain"
	"github.com/rs/zerolog"
)

// Uploader is the part of manager.Uploader the exporter needs
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Config describes an S3-compatible bucket (AWS, Cloudflare R2, MinIO)
type S3Config struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// ArtifactExporter uploads run results and circuits to object storage
type ArtifactExporter struct {
	uploader Uploader
	bucket   string
	prefix   string
	log      zerolog.Logger
}

// NewArtifactExporter creates an exporter on top of an existing uploader
func NewArtifactExporter(uploader Uploader, bucket, prefix string, log zerolog.Logger) *ArtifactExporter {
	return &ArtifactExporter{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		log:      log.With().Str("service", "artifact_export").Logger(),
	}
}

// NewS3ArtifactExporter builds the AWS client from cfg. A custom endpoint
// switches to path-style addressing.
func NewS3ArtifactExporter(ctx context.Context, cfg S3Config, log zerolog.Logger) (*ArtifactExporter, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("artifact bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewArtifactExporter(manager.NewUploader(client), cfg.Bucket, cfg.Prefix, log), nil
}

// Keys returns the object keys of a run's result document and circuit
func (e *ArtifactExporter) Keys(runID string) (string, string) {
	dir := path.Join(e.prefix, runID)
	return path.Join(dir, "result.json"), path.Join(dir, "circuit.qasm")
}

// Export implements domain.ArtifactExporter
func (e *ArtifactExporter) Export(ctx context.Context, run domain.RunResult, qasm string) error {
	startTime := time.Now()

	doc, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.ID, err)
	}

	resultKey, circuitKey := e.Keys(run.ID)
	if err := e.put(ctx, resultKey, "application/json", doc); err != nil {
		return err
	}
	if err := e.put(ctx, circuitKey, "text/plain", []byte(qasm)); err != nil {
		return err
	}

	e.log.Info().
		Str("run_id", run.ID).
		Str("bucket", e.bucket).
		Int("result_bytes", len(doc)).
		Int("circuit_bytes", len(qasm)).
		Dur("duration_ms", time.Since(startTime)).
		Msg("Run artifacts exported")
	return nil
}

func (e *ArtifactExporter) put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}
