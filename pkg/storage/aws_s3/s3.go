// Package aws_s3 uploads to S3 and S3-compatible endpoints (MinIO, Cloudflare R2)
// Package aws_s3 上传到 S3 及兼容端点（MinIO、Cloudflare R2）
package aws_s3

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/haierkeys/flownote-service/pkg/fileurl"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type Config struct {
	// Endpoint 非空时使用 path-style 访问自定义端点
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

type S3 struct {
	S3Client        *s3.Client
	TransferManager *transfermanager.Client
	Config          *Config
}

// NewClient 创建 S3 存储实例
func NewClient(ctx context.Context, conf *Config) (*S3, error) {
	region := conf.Region
	if region == "" {
		region = "auto"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "aws_s3")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
	})

	return &S3{
		S3Client:        client,
		TransferManager: transfermanager.New(client),
		Config:          conf,
	}, nil
}

// SendFile 上传文件，修改时间写入对象元数据
func (p *S3) SendFile(ctx context.Context, pathKey string, r io.Reader, cType string, modTime time.Time) (string, error) {
	key := fileurl.JoinKey(p.Config.CustomPath, pathKey)

	input := &transfermanager.UploadObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(key),
		Body:   r,
	}
	if cType != "" {
		input.ContentType = aws.String(cType)
	}
	if !modTime.IsZero() {
		input.Metadata = map[string]string{
			"modification-time": modTime.Format(time.RFC3339),
		}
	}

	if _, err := p.TransferManager.UploadObject(ctx, input); err != nil {
		return "", errors.Wrap(err, "aws_s3")
	}
	return fileurl.PathSuffixCheckAdd(p.Config.BucketName, "/") + key, nil
}

func (p *S3) SendContent(ctx context.Context, pathKey string, content []byte, modTime time.Time) (string, error) {
	return p.SendFile(ctx, pathKey, bytes.NewReader(content), "application/json", modTime)
}

func (p *S3) Delete(ctx context.Context, pathKey string) error {
	_, err := p.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(fileurl.JoinKey(p.Config.CustomPath, pathKey)),
	})
	return errors.Wrap(err, "aws_s3")
}
