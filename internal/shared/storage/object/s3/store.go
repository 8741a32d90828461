package s3

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"resume-scorer/internal/shared/storage/object"
)

const defaultRegion = "us-east-1"

// Store reads s3://bucket/key locations and presigns uploads into one bucket.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
}

// New loads the default AWS config for region and returns a Store.
// Open only reads from bucket when one is configured.
func New(ctx context.Context, region, bucket, prefix string) (*Store, error) {
	if strings.TrimSpace(region) == "" {
		region = defaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithConfig(cfg, bucket, prefix), nil
}

// NewWithConfig builds a Store from an already loaded AWS config.
func NewWithConfig(cfg aws.Config, bucket, prefix string) *Store {
	client := s3.NewFromConfig(cfg)
	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  strings.TrimSpace(bucket),
		prefix:  normalizePrefix(prefix),
	}
}

// Open downloads the object named by an s3://bucket/key location.
func (s *Store) Open(ctx context.Context, location string) (*object.Object, error) {
	bucket, key, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	if s.bucket != "" && bucket != s.bucket {
		return nil, fmt.Errorf("s3 location outside bucket %s: %q", s.bucket, location)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", bucket, key, err)
	}
	return &object.Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}, nil
}

// PresignedUpload is a short-lived PUT URL plus the location the object will have.
type PresignedUpload struct {
	URL       string
	Location  string
	ExpiresIn time.Duration
}

// PresignPut returns a PUT URL for key under the configured bucket and prefix.
func (s *Store) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (PresignedUpload, error) {
	if s.bucket == "" {
		return PresignedUpload{}, fmt.Errorf("uploads bucket not configured")
	}
	objectKey := applyPrefix(s.prefix, key)
	out, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("presign put bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return PresignedUpload{
		URL:       out.URL,
		Location:  "s3://" + s.bucket + "/" + objectKey,
		ExpiresIn: expires,
	}, nil
}

// ParseLocation splits an s3://bucket/key URL.
func ParseLocation(location string) (bucket, key string, err error) {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return "", "", fmt.Errorf("parse s3 location: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("not an s3 location: %q", location)
	}
	key = strings.TrimLeft(path.Clean("/"+u.Path), "/")
	if key == "" {
		return "", "", fmt.Errorf("s3 location missing key: %q", location)
	}
	return u.Host, key, nil
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.Store = (*Store)(nil)
