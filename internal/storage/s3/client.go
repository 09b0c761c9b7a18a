package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/cherrycherry3/crt-backend/internal/config"
	"github.com/google/uuid"
)

const (
	emptyAWSSessionToken     = ""
	contentDispositionInline = "inline"
	objectURLFmt             = "https://%s.s3.%s.amazonaws.com/%s"

	errFailedCreateAWSSessionFmt             = "failed to create AWS session: %w"
	errFailedPutObjectFmt                    = "failed to upload object: %w"
	errFailedGeneratePresignedDownloadURLFmt = "failed to generate presigned download URL: %w"
	errFailedDeleteObjectFmt                 = "failed to delete object: %w"
)

// Client stores course material in a single bucket.
type Client struct {
	svc                s3iface.S3API
	bucket             string
	region             string
	prefix             string
	presignedURLExpiry time.Duration
}

func NewClient(cfg *config.AWSConfig) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		),
	})
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return newClient(s3.New(sess), cfg), nil
}

func newClient(svc s3iface.S3API, cfg *config.AWSConfig) *Client {
	return &Client{
		svc:                svc,
		bucket:             cfg.Bucket,
		region:             cfg.Region,
		prefix:             cfg.CoursePrefix,
		presignedURLExpiry: cfg.PresignExpiry,
	}
}

// CourseObjectKey returns {prefix}/{courseID}/{uuid}_{filename}.
func (c *Client) CourseObjectKey(courseID int, filename string) string {
	return BuildObjectKey(c.prefix, courseID, filename)
}

// PutObject uploads body so browsers render it inline, and returns its public URL.
func (c *Client) PutObject(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := c.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(c.bucket),
		Key:                aws.String(key),
		Body:               body,
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(contentDispositionInline),
	})
	if err != nil {
		return "", fmt.Errorf(errFailedPutObjectFmt, err)
	}

	return c.ObjectURL(key), nil
}

func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf(errFailedDeleteObjectFmt, err)
	}

	return nil
}

// PresignGet signs a GET for key; the URL is valid for PresignExpiry.
func (c *Client) PresignGet(ctx context.Context, key string) (string, error) {
	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket:                     aws.String(c.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(contentDispositionInline),
	})
	req.SetContext(ctx)

	signed, err := req.Presign(c.presignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf(errFailedGeneratePresignedDownloadURLFmt, err)
	}

	return signed, nil
}

func (c *Client) PresignExpiry() time.Duration {
	return c.presignedURLExpiry
}

// ObjectURL is the virtual-hosted style URL of key. Each path segment is escaped.
func (c *Client) ObjectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf(objectURLFmt, c.bucket, c.region, strings.Join(segments, "/"))
}

// BuildObjectKey places filename under the course folder with a random prefix so
// uploads of the same name never collide. Any directory part of filename is dropped.
func BuildObjectKey(prefix string, courseID int, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	object := uuid.NewString() + "_" + name

	parts := make([]string, 0, 3)
	if trimmed := strings.Trim(prefix, "/"); trimmed != "" {
		parts = append(parts, trimmed)
	}
	parts = append(parts, strconv.Itoa(courseID), object)

	return strings.Join(parts, "/")
}
