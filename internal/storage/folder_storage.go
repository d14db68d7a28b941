package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hireflow/onboarding/internal/config"
	"go.uber.org/zap"
)

// folderMarker is the zero-byte object that makes an empty folder
// visible in bucket browsers. It is never reported as a file.
const folderMarker = ".keep"

// S3FolderStorage keeps each candidate's document drop as a key prefix
// in an S3-compatible bucket.
type S3FolderStorage struct {
	client        *s3.Client
	bucket        string
	browseBaseURL string
	logger        *zap.Logger
}

// NewS3FolderStorage builds the S3 client from the application
// configuration. A custom endpoint supports MinIO and other
// S3-compatible stores.
func NewS3FolderStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*S3FolderStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3FolderStorage{
		client:        client,
		bucket:        cfg.S3Bucket,
		browseBaseURL: cfg.S3BrowseBaseURL,
		logger:        logger,
	}, nil
}

// Provision creates the candidate folder by writing its marker object.
// Provisioning is idempotent: writing the marker again is harmless and
// the returned reference is stable for a given candidate id.
func (s *S3FolderStorage) Provision(ctx context.Context, candidateID, candidateName string) (string, string, error) {
	ref := fmt.Sprintf("candidates/%s/", candidateID)
	markerKey := ref + folderMarker

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(markerKey),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to provision folder: %w", err)
	}

	s.logger.Info("candidate folder provisioned",
		zap.String("candidate_id", candidateID),
		zap.String("folder_ref", ref))

	return ref, s.browseURL(ref), nil
}

// ListFiles returns the file names currently under the folder prefix.
// An empty folder yields an empty slice and a nil error; any request
// failure is returned as-is so the caller can tell "empty" from
// "listing failed".
func (s *S3FolderStorage) ListFiles(ctx context.Context, ref string) ([]string, error) {
	names := []string{}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(ref),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list folder %s: %w", ref, err)
		}
		for _, obj := range page.Contents {
			name := path.Base(aws.ToString(obj.Key))
			if name == folderMarker || strings.HasSuffix(aws.ToString(obj.Key), "/") {
				continue
			}
			names = append(names, name)
		}
	}

	return names, nil
}

func (s *S3FolderStorage) browseURL(ref string) string {
	if s.browseBaseURL == "" {
		return fmt.Sprintf("s3://%s/%s", s.bucket, ref)
	}
	return strings.TrimSuffix(s.browseBaseURL, "/") + "/" + ref
}
