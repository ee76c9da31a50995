package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/repositories"
)

// S3Client abstracts the S3 API operations used by S3Store.
// The s3.Client type satisfies this interface.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds configuration for the S3 media store
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // Optional: S3-compatible endpoint such as MinIO
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3ConfigFromEnv creates a new S3Config from environment variables
func NewS3ConfigFromEnv() S3Config {
	return S3Config{
		Bucket:          os.Getenv("S3_BUCKET"),
		Prefix:          os.Getenv("S3_PREFIX"),
		Region:          os.Getenv("S3_REGION"),
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
}

// ValidateS3Config validates the S3Config
func ValidateS3Config(config S3Config) error {
	if config.Bucket == "" {
		return fmt.Errorf("S3 bucket is required")
	}
	if config.Region == "" {
		return fmt.Errorf("S3 region is required")
	}
	if (config.AccessKeyID == "") != (config.SecretAccessKey == "") {
		return fmt.Errorf("both AWS access key and secret are required")
	}
	return nil
}

// NewS3Client builds an s3.Client from config.
func NewS3Client(config S3Config) (*s3.Client, error) {
	if err := ValidateS3Config(config); err != nil {
		return nil, err
	}
	opts := s3.Options{Region: config.Region}
	if config.AccessKeyID != "" {
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     config.AccessKeyID,
					SecretAccessKey: config.SecretAccessKey,
					Source:          "bondly",
				}, nil
			}))
	}
	if config.Endpoint != "" {
		opts.BaseEndpoint = aws.String(config.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts), nil
}

// S3Store is a MediaStore backed by an S3 bucket. Expiry is left to the
// bucket's lifecycle rules.
type S3Store struct {
	client S3Client
	bucket string
	prefix string
	logger *zap.Logger
}

var _ repositories.MediaStore = (*S3Store)(nil)

// NewS3Store creates a new S3 media store
func NewS3Store(client S3Client, bucket, prefix string, logger *zap.Logger) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

func (s *S3Store) key(id string) string {
	if s.prefix == "" {
		return id
	}
	return s.prefix + "/" + id
}

// Put uploads blob, assigning an id when it has none.
func (s *S3Store) Put(ctx context.Context, blob *repositories.MediaBlob) error {
	if blob == nil || len(blob.Data) == 0 {
		return errors.New("media blob cannot be empty")
	}
	if blob.ID == "" {
		blob.ID = uuid.New().String()
	}
	if blob.CreatedAt.IsZero() {
		blob.CreatedAt = time.Now()
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(blob.ID)),
		Body:          bytes.NewReader(blob.Data),
		ContentType:   aws.String(blob.MIMEType),
		ContentLength: aws.Int64(int64(len(blob.Data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload media %s: %w", blob.ID, err)
	}

	s.logger.Debug("Media uploaded", zap.String("id", blob.ID), zap.String("bucket", s.bucket))
	return nil
}

// Get downloads the blob stored under id.
func (s *S3Store) Get(ctx context.Context, id string) (*repositories.MediaBlob, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, repositories.ErrMediaNotFound
		}
		return nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media %s: %w", id, err)
	}

	blob := &repositories.MediaBlob{
		ID:       id,
		MIMEType: aws.ToString(out.ContentType),
		Data:     data,
	}
	if out.LastModified != nil {
		blob.CreatedAt = *out.LastModified
	}
	return blob, nil
}

// Delete removes the object. S3 DeleteObject is idempotent.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	return err
}

// isS3NotFound reports whether err indicates the S3 object does not exist.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
