package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"

	"ModelVault/internal/domain/models"
)

// S3Option configures the S3 backend.
type S3Option func(*S3Config)

// S3Config holds S3 backend configuration.
type S3Config struct {
	Bucket       string
	Region       string
	Prefix       string
	FetchTimeout time.Duration
	MaxRetries   uint64
}

// WithBucket sets the bucket name.
func WithBucket(bucket string) S3Option {
	return func(c *S3Config) { c.Bucket = bucket }
}

// WithRegion sets the AWS region.
func WithRegion(region string) S3Option {
	return func(c *S3Config) { c.Region = region }
}

// WithPrefix sets a key prefix prepended to every path.
func WithPrefix(prefix string) S3Option {
	return func(c *S3Config) { c.Prefix = prefix }
}

// WithFetchTimeout bounds each GetObject call.
func WithFetchTimeout(d time.Duration) S3Option {
	return func(c *S3Config) { c.FetchTimeout = d }
}

// WithMaxRetries sets how many times a transient fetch failure is retried.
func WithMaxRetries(n uint64) S3Option {
	return func(c *S3Config) { c.MaxRetries = n }
}

// S3 fetches artifacts from an S3 bucket. Transient failures are retried
// with exponential backoff; missing keys fail immediately.
type S3 struct {
	client *s3.Client
	cfg    *S3Config
}

// NewS3 creates an S3 backend using the default AWS credential chain.
func NewS3(ctx context.Context, opts ...S3Option) (*S3, error) {
	cfg := &S3Config{
		Region:       "us-east-1",
		FetchTimeout: 15 * time.Second,
		MaxRetries:   3,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return &S3{client: s3.NewFromConfig(awsCfg), cfg: cfg}, nil
}

// Name identifies the backend variant.
func (s *S3) Name() string { return "s3" }

// Fetch downloads the object at the resolved key. Returns
// ArtifactNotFoundError for missing keys and BackendUnavailableError once
// retries for a transient failure are exhausted.
func (s *S3) Fetch(ctx context.Context, path string) ([]byte, error) {
	key := s.key(path)

	var data []byte
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()

		out, err := s.client.GetObject(callCtx, &s3.GetObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) {
				return backoff.Permanent(&models.ArtifactNotFoundError{
					Backend: s.Name(), Path: path, Err: err,
				})
			}
			return err
		}
		defer out.Body.Close()

		data, err = io.ReadAll(out.Body)
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.cfg.MaxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		var nf *models.ArtifactNotFoundError
		if errors.As(err, &nf) {
			return nil, nf
		}
		return nil, &models.BackendUnavailableError{Backend: s.Name(), Path: path, Err: err}
	}
	return data, nil
}

// Head returns the size of an object, or exists=false for missing keys.
func (s *S3) Head(ctx context.Context, key string) (int64, bool, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, &models.BackendUnavailableError{Backend: s.Name(), Path: key, Err: err}
	}
	return aws.ToInt64(out.ContentLength), true, nil
}

// Put uploads an object. Used by the model tree sync tool.
func (s *S3) Put(ctx context.Context, key string, body io.Reader, size int64) error {
	// PutObject needs a seekable body for signing; buffer the stream.
	buf, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(s.key(key)),
		Body:          bytes.NewReader(buf),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return &models.BackendUnavailableError{Backend: s.Name(), Path: key, Err: err}
	}
	return nil
}

func (s *S3) key(path string) string {
	if s.cfg.Prefix == "" {
		return path
	}
	return strings.TrimSuffix(s.cfg.Prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
