package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
)

// putObjectAPI is the part of *s3.Client the store uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Store uploads files to an S3-compatible bucket. References have the
// form "s3://<bucket>/<key>".
type S3Store struct {
	client putObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Store builds a client with static credentials and a custom base
// endpoint, which also covers MinIO.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return NewS3StoreWithClient(client, cfg.S3Bucket, "uploads"), nil
}

func NewS3StoreWithClient(client putObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Save buffers the body so the SDK can compute its checksum and length.
// Keys are claimed with If-None-Match so two uploads in the same
// millisecond never overwrite each other.
func (s *S3Store) Save(ctx context.Context, upload *Upload) (string, error) {
	body, err := io.ReadAll(upload.Body)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	ts := s.now()

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		key := ObjectName(ts.Add(time.Duration(attempt)*time.Millisecond), upload.Filename)
		if s.prefix != "" {
			key = s.prefix + "/" + key
		}

		input := &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(body),
			ContentLength: aws.Int64(int64(len(body))),
			IfNoneMatch:   aws.String("*"),
		}
		if upload.ContentType != "" {
			input.ContentType = aws.String(upload.ContentType)
		}

		_, err := s.client.PutObject(ctx, input)
		if isKeyTaken(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("put object: %w", err)
		}

		return "s3://" + s.bucket + "/" + key, nil
	}

	return "", errors.New("no free object key")
}

// isKeyTaken reports a failed If-None-Match precondition (412) or a
// concurrent conditional write on the same key (409).
func isKeyTaken(err error) bool {
	var re interface{ HTTPStatusCode() int }
	if !errors.As(err, &re) {
		return false
	}
	code := re.HTTPStatusCode()
	return code == http.StatusPreconditionFailed || code == http.StatusConflict
}
