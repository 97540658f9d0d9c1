// Package aliyun_oss uploads to Aliyun OSS
// Package aliyun_oss 阿里云 OSS 存储
package aliyun_oss

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/haierkeys/flownote-service/pkg/fileurl"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

type OSS struct {
	Client *oss.Client
	Bucket *oss.Bucket
	Config *Config
}

// NewClient 创建 OSS 存储实例
func NewClient(conf *Config) (*OSS, error) {
	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	bucket, err := client.Bucket(conf.BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	return &OSS{Client: client, Bucket: bucket, Config: conf}, nil
}

// SendFile 上传文件
func (p *OSS) SendFile(ctx context.Context, pathKey string, r io.Reader, cType string, modTime time.Time) (string, error) {
	key := fileurl.JoinKey(p.Config.CustomPath, pathKey)

	options := []oss.Option{oss.WithContext(ctx)}
	if cType != "" {
		options = append(options, oss.ContentType(cType))
	}
	if !modTime.IsZero() {
		options = append(options, oss.Meta("modification-time", modTime.Format(time.RFC3339)))
	}

	if err := p.Bucket.PutObject(key, r, options...); err != nil {
		return "", errors.Wrap(err, "aliyun_oss")
	}
	return key, nil
}

func (p *OSS) SendContent(ctx context.Context, pathKey string, content []byte, modTime time.Time) (string, error) {
	return p.SendFile(ctx, pathKey, bytes.NewReader(content), "application/json", modTime)
}

func (p *OSS) Delete(ctx context.Context, pathKey string) error {
	err := p.Bucket.DeleteObject(fileurl.JoinKey(p.Config.CustomPath, pathKey), oss.WithContext(ctx))
	return errors.Wrap(err, "aliyun_oss")
}
