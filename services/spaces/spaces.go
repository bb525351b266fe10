// Package spaces mirrors uploaded files to S3-compatible object storage
// (DigitalOcean Spaces, MinIO, AWS S3).
package spaces

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Config holds configuration for the Spaces client
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	CDNURL    string
}

// Client puts and removes mirrored objects
type Client struct {
	s3Client s3iface.S3API
	bucket   string
	endpoint string
	cdnURL   string
}

// NewClient creates a new Spaces client
func NewClient(config Config) (*Client, error) {
	if config.Bucket == "" || config.Region == "" {
		return nil, errors.New("spaces bucket and region must be configured")
	}

	// Default endpoint, without scheme, for URL construction
	if config.Endpoint == "" {
		config.Endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", config.Region)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return NewWithAPI(s3.New(sess), config), nil
}

// NewWithAPI builds a client around an existing S3 API implementation
func NewWithAPI(api s3iface.S3API, config Config) *Client {
	return &Client{
		s3Client: api,
		bucket:   config.Bucket,
		endpoint: strings.TrimPrefix(strings.TrimPrefix(config.Endpoint, "https://"), "http://"),
		cdnURL:   strings.TrimRight(config.CDNURL, "/"),
	}
}

// Upload puts data under key with public-read ACL and returns its public URL
func (s *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.URL(key), nil
}

// URL returns the public URL of key, preferring the CDN when configured
func (s *Client) URL(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}
