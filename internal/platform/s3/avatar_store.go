// Package s3 stores avatars in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// ObjectAPI is the subset of the S3 client the avatar store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewClient builds an S3 client from the avatar bucket settings. A custom
// endpoint (MinIO, LocalStack) switches to path-style addressing.
func NewClient(ctx context.Context, cfg config.AvatarS3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// AvatarStore implements store.AvatarStore with one object per user.
type AvatarStore struct {
	client ObjectAPI
	bucket string
	logger *slog.Logger
}

var _ store.AvatarStore = (*AvatarStore)(nil)

// NewAvatarStore creates an AvatarStore writing to bucket.
// If logger is nil, a default logger will be used.
func NewAvatarStore(client ObjectAPI, bucket string, logger *slog.Logger) *AvatarStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvatarStore{
		client: client,
		bucket: bucket,
		logger: logger.With(slog.String("component", "s3_avatar_store")),
	}
}

func objectKey(userID uuid.UUID) string {
	return "avatars/" + userID.String() + ".png"
}

// Save implements store.AvatarStore.Save
func (s *AvatarStore) Save(ctx context.Context, userID uuid.UUID, data []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(userID)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(avatar.ContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		log.Error("failed to put avatar object",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return fmt.Errorf("failed to save avatar: %w", err)
	}
	return nil
}

// Get implements store.AvatarStore.Get
func (s *AvatarStore) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(userID)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrAvatarNotFound
		}
		return nil, fmt.Errorf("failed to get avatar: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	return data, nil
}

// Delete implements store.AvatarStore.Delete
func (s *AvatarStore) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(userID)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
