package s3

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/cherrycherry3/crt-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	put     *s3.PutObjectInput
	body    string
	deleted []string
	err     error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	raw, _ := io.ReadAll(in.Body)
	f.body = string(raw)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func testConfig() *config.AWSConfig {
	return &config.AWSConfig{
		Region:          "ap-south-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Bucket:          "crt-files",
		CoursePrefix:    "Courses",
		PresignExpiry:   15 * time.Minute,
	}
}

func TestBuildObjectKey(t *testing.T) {
	key := BuildObjectKey("Courses", 7, "notes.pdf")

	parts := strings.Split(key, "/")
	require.Len(t, parts, 3)
	assert.Equal(t, "Courses", parts[0])
	assert.Equal(t, "7", parts[1])
	assert.True(t, strings.HasSuffix(parts[2], "_notes.pdf"))
	assert.Len(t, strings.TrimSuffix(parts[2], "_notes.pdf"), 36)

	assert.NotEqual(t, key, BuildObjectKey("Courses", 7, "notes.pdf"))
}

func TestBuildObjectKey_StripsDirectories(t *testing.T) {
	key := BuildObjectKey("/Courses/", 1, `..\..\evil.pdf`)
	assert.True(t, strings.HasPrefix(key, "Courses/1/"))
	assert.True(t, strings.HasSuffix(key, "_evil.pdf"))
	assert.NotContains(t, key, "..")
}

func TestObjectURL_EscapesSegments(t *testing.T) {
	c := newClient(&fakeS3{}, testConfig())

	got := c.ObjectURL("Courses/3/abc_unit 1 notes.pdf")
	assert.Equal(t, "https://crt-files.s3.ap-south-1.amazonaws.com/Courses/3/abc_unit%201%20notes.pdf", got)
}

func TestPutObject(t *testing.T) {
	fake := &fakeS3{}
	c := newClient(fake, testConfig())

	u, err := c.PutObject(context.Background(), "Courses/3/x_a.pdf", strings.NewReader("%PDF"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "https://crt-files.s3.ap-south-1.amazonaws.com/Courses/3/x_a.pdf", u)
	assert.Equal(t, "crt-files", aws.StringValue(fake.put.Bucket))
	assert.Equal(t, "inline", aws.StringValue(fake.put.ContentDisposition))
	assert.Equal(t, "application/pdf", aws.StringValue(fake.put.ContentType))
	assert.Equal(t, "%PDF", fake.body)
}

func TestPutObject_Error(t *testing.T) {
	boom := errors.New("access denied")
	c := newClient(&fakeS3{err: boom}, testConfig())

	_, err := c.PutObject(context.Background(), "k", strings.NewReader(""), "text/plain")
	assert.ErrorIs(t, err, boom)
}

func TestDeleteObject(t *testing.T) {
	fake := &fakeS3{}
	c := newClient(fake, testConfig())

	require.NoError(t, c.DeleteObject(context.Background(), "Courses/3/x_a.pdf"))
	assert.Equal(t, []string{"Courses/3/x_a.pdf"}, fake.deleted)
}

func TestPresignGet(t *testing.T) {
	cfg := testConfig()
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	})
	require.NoError(t, err)
	c := newClient(s3.New(sess), cfg)

	signed, err := c.PresignGet(context.Background(), "Courses/3/x_a.pdf")
	require.NoError(t, err)

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/Courses/3/x_a.pdf", parsed.Path)
	assert.Equal(t, "900", parsed.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, parsed.Query().Get("X-Amz-Signature"))
	assert.Equal(t, 15*time.Minute, c.PresignExpiry())
}
