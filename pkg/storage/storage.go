// Package storage uploads backup archives to a configurable target
// Package storage 将备份文件上传到可配置的存储目标
package storage

import (
	"context"
	"io"
	"time"

	"github.com/haierkeys/flownote-service/pkg/code"
	"github.com/haierkeys/flownote-service/pkg/storage/aliyun_oss"
	"github.com/haierkeys/flownote-service/pkg/storage/aws_s3"
	"github.com/haierkeys/flownote-service/pkg/storage/local_fs"
	"github.com/haierkeys/flownote-service/pkg/storage/webdav"
)

type Type = string

const (
	LOCAL  Type = "localfs"
	S3     Type = "s3"
	OSS    Type = "oss"
	WebDAV Type = "webdav"
)

// StorageTypeMap 支持的存储类型
var StorageTypeMap = map[Type]bool{
	LOCAL:  true,
	S3:     true,
	OSS:    true,
	WebDAV: true,
}

// Config Unified storage configuration
// Config 统一存储配置
type Config struct {
	Type Type `yaml:"type" default:"localfs"`

	// CustomPath 对象键前缀
	CustomPath string `yaml:"custom-path"`

	// S3 兼容存储（AWS / MinIO / R2 通过 endpoint 区分）与 OSS
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/backup"`
}

// Storager 存储驱动接口
type Storager interface {
	// SendFile uploads r under pathKey and returns the stored location
	SendFile(ctx context.Context, pathKey string, r io.Reader, cType string, modTime time.Time) (string, error)
	// SendContent uploads content under pathKey and returns the stored location
	SendContent(ctx context.Context, pathKey string, content []byte, modTime time.Time) (string, error)
	// Delete removes pathKey
	Delete(ctx context.Context, pathKey string) error
}

// NewClient builds the driver selected by config.Type
// NewClient 根据 config.Type 创建存储驱动
func NewClient(ctx context.Context, config *Config) (Storager, error) {
	if config == nil {
		return nil, code.ErrorInvalidStorageType
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case S3:
		return aws_s3.NewClient(ctx, &aws_s3.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case OSS:
		return aliyun_oss.NewClient(&aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	}
	return nil, code.ErrorInvalidStorageType
}
