package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/mkravets/contactdesk/internal/server/config"
)

func testConfig() *sc.Config {
	return &sc.Config{
		S3RootUser:     "admin",
		S3RootPassword: "secretpassword",
		S3Bucket:       "avatars",
		S3Region:       "us-east-1",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
	}
}

func stubClient(t *testing.T, put func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error)) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPut := putObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return put(in)
	}
}

func TestUpload_Success(t *testing.T) {
	var captured *s3.PutObjectInput
	stubClient(t, func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		captured = in
		return &s3.PutObjectOutput{}, nil
	})

	u := NewS3Uploader(testConfig())

	url, err := u.Upload(context.Background(), "avatars/alice/key", strings.NewReader("png"), "image/png")
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if url != "http://127.0.0.1:9000/avatars/avatars/alice/key" {
		t.Fatalf("unexpected url: %q", url)
	}
	if captured == nil || *captured.Bucket != "avatars" || *captured.Key != "avatars/alice/key" {
		t.Fatalf("unexpected put input: %+v", captured)
	}
	if *captured.ContentType != "image/png" {
		t.Fatalf("unexpected content type: %q", *captured.ContentType)
	}
	body, err := io.ReadAll(captured.Body)
	if err != nil || string(body) != "png" {
		t.Fatalf("unexpected body: %q err=%v", body, err)
	}
}

func TestUpload_PutError(t *testing.T) {
	stubClient(t, func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("connection refused")
	})

	u := NewS3Uploader(testConfig())

	_, err := u.Upload(context.Background(), "k", strings.NewReader("png"), "image/png")
	if err == nil || !strings.Contains(err.Error(), "upload failed") {
		t.Fatalf("expected wrapped upload error, got %v", err)
	}
}

func TestUpload_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad credentials chain")
	}

	u := NewS3Uploader(testConfig())

	if _, err := u.Upload(context.Background(), "k", strings.NewReader("png"), "image/png"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAvatarKey(t *testing.T) {
	first := AvatarKey("alice")
	second := AvatarKey("alice")

	if !strings.HasPrefix(first, "avatars/alice/") {
		t.Fatalf("unexpected key: %q", first)
	}
	if first == second {
		t.Fatal("keys must be unique per call")
	}
}
