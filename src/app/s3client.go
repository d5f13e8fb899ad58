package app

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	cfg "placeshare/src/configuration"
)

// FileStorage stores uploaded files and hands back a URL clients can load
// them from.
type FileStorage interface {
	UploadFile(ctx context.Context, name string, object io.Reader, size int64, contentType string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

type ClientMinio interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (info minio.UploadInfo, err error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type MinioS3Client struct {
	endpoint   string
	useSSL     bool
	bucketName string
	client     ClientMinio
}

const defaultContentType = "application/octet-stream"

// NewMinioS3Client creates a new MinioS3Client instance.
func NewMinioS3Client(config cfg.S3Properties) (*MinioS3Client, error) {
	minioClient, err := minio.New(config.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Minio S3 client: %w", err)
	}

	return &MinioS3Client{
		endpoint:   config.Host,
		useSSL:     config.UseSSL,
		bucketName: config.Bucket,
		client:     minioClient,
	}, nil
}

// UploadFile uploads a file to the S3 bucket and returns its URL.
func (s3 *MinioS3Client) UploadFile(ctx context.Context, name string, object io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := s3.client.PutObject(ctx,
		s3.bucketName,
		name,
		object,
		size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("can not upload %s: %w", name, err)
	}
	return s3.ObjectURL(name), nil
}

// DeleteFile removes the object a previously returned URL points at.
func (s3 *MinioS3Client) DeleteFile(ctx context.Context, fileURL string) error {
	name := s3.objectName(fileURL)
	err := s3.client.RemoveObject(ctx, s3.bucketName, name, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("can not delete %s: %w", name, err)
	}
	return nil
}

// ObjectURL builds the public URL of an object in the bucket.
func (s3 *MinioS3Client) ObjectURL(name string) string {
	scheme := "http"
	if s3.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s3.endpoint, s3.bucketName, name)
}

func (s3 *MinioS3Client) objectName(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return fileURL
	}
	return strings.TrimPrefix(parsed.Path, fmt.Sprintf("/%s/", s3.bucketName))
}
