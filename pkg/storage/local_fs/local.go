// Package local_fs stores uploads on the local filesystem
// Package local_fs 本地文件系统存储
package local_fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/flownote-service/pkg/fileurl"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/backup"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(cfg *Config) (*LocalFS, error) {
	if cfg.SavePath == "" {
		return nil, errors.New("local_fs: save-path is empty")
	}
	return &LocalFS{Config: cfg}, nil
}

// fullPath resolves a key below SavePath
func (p *LocalFS) fullPath(pathKey string) string {
	return filepath.Join(p.Config.SavePath, filepath.FromSlash(fileurl.JoinKey(p.Config.CustomPath, pathKey)))
}

// SendFile 保存文件并同步修改时间
func (p *LocalFS) SendFile(ctx context.Context, pathKey string, r io.Reader, _ string, modTime time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := p.fullPath(pathKey)
	if err := fileurl.CreatePath(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", errors.Wrap(err, "local_fs")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}

	if !modTime.IsZero() {
		if err := os.Chtimes(dst, modTime, modTime); err != nil {
			return "", errors.Wrap(err, "local_fs")
		}
	}
	return dst, nil
}

func (p *LocalFS) SendContent(ctx context.Context, pathKey string, content []byte, modTime time.Time) (string, error) {
	return p.SendFile(ctx, pathKey, bytes.NewReader(content), "", modTime)
}

func (p *LocalFS) Delete(ctx context.Context, pathKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(p.fullPath(pathKey))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}
