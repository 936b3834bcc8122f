package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// URLSigner выдаёт временную ссылку на объект или ошибку; для слоя данных
// это непрозрачная функция, её сбой деградирует поле в nil.
type URLSigner interface {
	SignedURL(ctx context.Context, key string) (string, error)
}

// S3 подписывает GET-ссылки на объекты бакета.
type S3 struct {
	Bucket  string
	Prefix  string
	presign *s3.PresignClient
	ttl     time.Duration
}

func NewS3(ctx context.Context, bucket, prefix string, ttl time.Duration) (*S3, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return &S3{
		Bucket:  bucket,
		Prefix:  prefix,
		presign: s3.NewPresignClient(client),
		ttl:     ttl,
	}, nil
}

func (s *S3) SignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(path.Join(s.Prefix, key)),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
