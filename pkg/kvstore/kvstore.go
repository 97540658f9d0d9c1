// Package kvstore is the small key-value collaborator behind the local note backend
// Package kvstore 本地笔记后端使用的键值存储
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for a missing key
var ErrNotFound = errors.New("kvstore: key not found")

// Store 键值存储接口
type Store interface {
	// Get returns the value of key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	// Close releases the store
	Close() error
}

const (
	TypeFile   = "file"
	TypeRedis  = "redis"
	TypeMemory = "memory"
)

// Config 键值存储配置
type Config struct {
	// Type file / redis / memory
	Type string `yaml:"type" default:"file"`
	// Dir 文件存储目录
	Dir string `yaml:"dir" default:"storage/local"`
	// Redis 连接配置
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr     string `yaml:"addr" default:"127.0.0.1:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Prefix 键前缀
	Prefix string `yaml:"prefix" default:"flownote:"`
}

// New opens the store selected by cfg.Type
// New 按 cfg.Type 创建存储
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case TypeFile, "":
		return NewFileStore(cfg.Dir)
	case TypeRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case TypeMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("kvstore: unsupported type %q", cfg.Type)
	}
}
