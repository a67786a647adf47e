package file_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/letterdesk/pkg/file"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func newS3(t *testing.T, client *MockS3Client, cfg file.S3Config) *file.S3Storage {
	t.Helper()
	if cfg.Bucket == "" {
		cfg.Bucket = "letters"
	}
	if cfg.Region == "" {
		cfg.Region = "eu-central-1"
	}
	s, err := file.NewS3Storage(context.Background(), cfg, file.WithS3Client(client))
	require.NoError(t, err)
	return s
}

func TestNewS3Storage(t *testing.T) {
	t.Parallel()

	_, err := file.NewS3Storage(context.Background(), file.S3Config{Region: "x"})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)

	s := newS3(t, new(MockS3Client), file.S3Config{})
	assert.Equal(t, "https://letters.s3.eu-central-1.amazonaws.com/a/b.pdf", s.URL("a/b.pdf"))

	s = newS3(t, new(MockS3Client), file.S3Config{Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/letters/a/b.pdf", s.URL("/a/b.pdf"))

	s = newS3(t, new(MockS3Client), file.S3Config{BaseURL: "https://cdn.example.com"})
	assert.Equal(t, "https://cdn.example.com/a/b.pdf", s.URL("a/b.pdf"))
}

func TestS3Storage_Put(t *testing.T) {
	t.Parallel()

	client := new(MockS3Client)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		rs := in.Body.(io.ReadSeeker)
		body, _ := io.ReadAll(rs)
		_, _ = rs.Seek(0, io.SeekStart)
		return *in.Bucket == "letters" &&
			*in.Key == "o/i/offer-letter-anu.pdf" &&
			*in.ContentType == "application/pdf" &&
			string(body) == "%PDF"
	})).Return(&s3.PutObjectOutput{}, nil)

	s := newS3(t, client, file.S3Config{})
	obj, err := s.Put(context.Background(), "/o/i/offer-letter-anu.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "o/i/offer-letter-anu.pdf", obj.Key)
	assert.Equal(t, int64(4), obj.Size)
	client.AssertExpectations(t)
}

func TestS3Storage_Put_InvalidKey(t *testing.T) {
	t.Parallel()

	client := new(MockS3Client)
	s := newS3(t, client, file.S3Config{})
	_, err := s.Put(context.Background(), "../x.pdf", []byte("x"), "")
	assert.ErrorIs(t, err, file.ErrInvalidKey)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}

func TestS3Storage_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, file.ErrAccessDenied},
		{"throttled", &smithy.GenericAPIError{Code: "SlowDown"}, file.ErrServiceUnavailable},
		{"no bucket", &types.NoSuchBucket{}, file.ErrBucketNotFound},
		{"timeout", context.DeadlineExceeded, file.ErrOperationTimeout},
		{"canceled", context.Canceled, file.ErrOperationCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := new(MockS3Client)
			client.On("PutObject", mock.Anything, mock.Anything).Return(nil, tt.err)
			s := newS3(t, client, file.S3Config{})

			_, err := s.Put(context.Background(), "k.pdf", []byte("x"), "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown error keeps cause", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("boom")
		client := new(MockS3Client)
		client.On("DeleteObject", mock.Anything, mock.Anything).Return(nil, cause)
		s := newS3(t, client, file.S3Config{})
		assert.ErrorIs(t, s.Delete(context.Background(), "k.pdf"), cause)
	})
}

func TestS3Storage_Exists(t *testing.T) {
	t.Parallel()

	client := new(MockS3Client)
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool { return *in.Key == "yes.pdf" })).
		Return(&s3.HeadObjectOutput{}, nil)
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool { return *in.Key == "no.pdf" })).
		Return(nil, &types.NotFound{})

	s := newS3(t, client, file.S3Config{})
	assert.True(t, s.Exists(context.Background(), "yes.pdf"))
	assert.False(t, s.Exists(context.Background(), "no.pdf"))
}
