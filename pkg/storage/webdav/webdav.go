// Package webdav uploads to a WebDAV server
// Package webdav WebDAV 存储
package webdav

import (
	"context"
	"io"
	"os"
	"path"
	"time"

	"github.com/haierkeys/flownote-service/pkg/fileurl"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// Config WebDAV 连接信息
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV WebDAV 客户端
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

// NewClient 创建 WebDAV 客户端
func NewClient(conf *Config) (*WebDAV, error) {
	c := gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password)
	if err := c.Connect(); err != nil {
		return nil, errors.Wrap(err, "webdav")
	}
	return &WebDAV{Client: c, Config: conf}, nil
}

// SendFile 上传文件，父目录不存在时自动创建
func (w *WebDAV) SendFile(ctx context.Context, pathKey string, r io.Reader, _ string, _ time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := "/" + fileurl.JoinKey(w.Config.CustomPath, pathKey)

	if err := w.Client.MkdirAll(path.Dir(key), 0o755); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	if err := w.Client.WriteStream(key, r, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return key, nil
}

func (w *WebDAV) SendContent(ctx context.Context, pathKey string, content []byte, modTime time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := "/" + fileurl.JoinKey(w.Config.CustomPath, pathKey)

	if err := w.Client.MkdirAll(path.Dir(key), 0o755); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	if err := w.Client.Write(key, content, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return key, nil
}

func (w *WebDAV) Delete(ctx context.Context, pathKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Wrap(w.Client.Remove("/"+fileurl.JoinKey(w.Config.CustomPath, pathKey)), "webdav")
}
