package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestContentTypeForImage(t *testing.T) {
	tests := []struct {
		extension string
		expected  string
	}{
		{".jpg", "image/jpeg"},
		{".JPEG", "image/jpeg"},
		{".png", "image/png"},
		{".gif", "image/gif"},
		{".webp", "image/webp"},
		{".bmp", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.extension, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContentTypeForImage(tt.extension))
		})
	}
}

func TestUploadImage(t *testing.T) {
	putter := &fakePutter{}
	u := newS3Uploader(putter, "eu-west-1", "media", "")
	u.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }

	res, err := u.UploadImage(context.Background(), strings.NewReader("img"), 3, "businesses", "user-1", "Shop Front.JPEG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Key, "businesses/2026/03/user-1/"), res.Key)
	assert.True(t, strings.HasSuffix(res.Key, ".jpg"), res.Key)
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/"+res.Key, res.URL)
	assert.Equal(t, int64(3), res.Size)

	require.NotNil(t, putter.input)
	assert.Equal(t, "media", aws.ToString(putter.input.Bucket))
	assert.Equal(t, res.Key, aws.ToString(putter.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "Shop Front.JPEG", putter.input.Metadata["original-filename"])
}

func TestUploadImage_Rejections(t *testing.T) {
	u := newS3Uploader(&fakePutter{}, "us-east-1", "media", "https://cdn.example.com/")

	_, err := u.UploadImage(context.Background(), strings.NewReader(""), 0, "secrets", "u", "a.png")
	assert.ErrorIs(t, err, ErrUnknownFolder)

	_, err = u.UploadImage(context.Background(), strings.NewReader(""), 0, "posts", "u", "a.exe")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploadImage_ClientError(t *testing.T) {
	boom := errors.New("access denied")
	u := newS3Uploader(&fakePutter{err: boom}, "us-east-1", "media", "https://cdn.example.com/")

	_, err := u.UploadImage(context.Background(), strings.NewReader("x"), 1, "avatars", "u", "me.png")
	assert.ErrorIs(t, err, boom)
}

func TestUploadImage_CustomBaseURL(t *testing.T) {
	u := newS3Uploader(&fakePutter{}, "us-east-1", "media", "https://cdn.example.com/")

	res, err := u.UploadImage(context.Background(), strings.NewReader("x"), 1, "avatars", "u", "me.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)
}
