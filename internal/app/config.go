// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/flownote-service/internal/dao"
	"github.com/haierkeys/flownote-service/internal/middleware"
	"github.com/haierkeys/flownote-service/internal/service"
	"github.com/haierkeys/flownote-service/pkg/kvstore"
	"github.com/haierkeys/flownote-service/pkg/storage"
	"github.com/haierkeys/flownote-service/pkg/util"
	"github.com/haierkeys/flownote-service/pkg/workerpool"
	"github.com/haierkeys/flownote-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultAuthTokenKey placeholder secret replaced when the default config is first written
const DefaultAuthTokenKey = "flownote-Auth-Token"

// AppConfig 应用配置
type AppConfig struct {
	File     string                  `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig            `yaml:"server"`
	Log      LogConfig               `yaml:"log"`
	Database dao.DatabaseConfig      `yaml:"database"`
	KVStore  kvstore.Config          `yaml:"kvstore"`
	App      AppSettings             `yaml:"app"`
	Notes    NotesConfig             `yaml:"notes"`
	AI       AIConfig                `yaml:"ai"`
	Backup   BackupConfig            `yaml:"backup"`
	Security SecurityConfig          `yaml:"security"`
	Tracer   middleware.TracerConfig `yaml:"tracer"`
	Cors     middleware.CorsConfig   `yaml:"cors"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/flownote.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式 debug / release / test
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9100"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics / pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9101"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	// AuthTokenKey 身份令牌 HS256 共享密钥，与外部身份服务一致
	AuthTokenKey string `yaml:"auth-token-key" default:"flownote-Auth-Token"`
	// TokenExpiry token 命令签发令牌的有效期，支持 7d / 24h / 30m
	TokenExpiry string `yaml:"token-expiry" default:"7d"`
}

// AppSettings 应用设置
type AppSettings struct {
	// Persistence auto / local / remote
	Persistence string `yaml:"persistence" default:"auto"`
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"20"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// RateLimitPerSecond 每个接口路径每秒允许的请求数，0 表示不限流
	RateLimitPerSecond int `yaml:"rate-limit-per-second" default:"50"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"16"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"256"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// NotesConfig 笔记配置
type NotesConfig struct {
	// SpecialTags 置顶标签根节点，按优先级排序
	SpecialTags []string `yaml:"special-tags"`
}

// AIConfig AI 标签配置
type AIConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base-url"`
	APIKey  string `yaml:"api-key"`
	Model   string `yaml:"model" default:"gpt-4o-mini"`
	MaxTags int    `yaml:"max-tags" default:"5"`
	// Timeout 单次调用超时，支持 10s / 1m
	Timeout string `yaml:"timeout" default:"15s"`
}

// BackupConfig 定时备份配置
type BackupConfig struct {
	Enabled bool           `yaml:"enabled"`
	Cron    string         `yaml:"cron" default:"0 3 * * *"`
	Storage storage.Config `yaml:"storage"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	c, err := ParseConfig(file)
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath
	return c, realpath, nil
}

// ParseConfig parses YAML config data and fills defaults
// ParseConfig 解析 YAML 配置并填充默认值
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "re-set default config failed")
	}

	if c.Notes.SpecialTags == nil {
		c.Notes.SpecialTags = append([]string{}, service.DefaultSpecialTags...)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate 校验配置取值
func (c *AppConfig) Validate() error {
	switch c.App.Persistence {
	case service.PersistenceAuto, service.PersistenceLocal, service.PersistenceRemote:
	default:
		return errors.Errorf("app.persistence must be auto, local or remote, got %q", c.App.Persistence)
	}
	if _, ok := storage.StorageTypeMap[c.Backup.Storage.Type]; !ok {
		return errors.Errorf("backup.storage.type %q is not supported", c.Backup.Storage.Type)
	}
	for name, value := range map[string]string{
		"security.token-expiry":     c.Security.TokenExpiry,
		"ai.timeout":                c.AI.Timeout,
		"app.write-queue-timeout":   c.App.WriteQueueTimeout,
		"app.write-queue-idle-time": c.App.WriteQueueIdleTime,
	} {
		if _, err := util.ParseDuration(value); err != nil {
			return errors.Wrapf(err, "invalid %s", name)
		}
	}
	return nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}

	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil && timeout > 0 {
		cfg.WriteTimeout = timeout
	}
	if idleTime, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil && idleTime > 0 {
		cfg.IdleTimeout = idleTime
	}

	return cfg
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	if expiry, err := util.ParseDuration(c.Security.TokenExpiry); err == nil && expiry > 0 {
		return expiry
	}
	return 7 * 24 * time.Hour
}

// GetServiceConfig 提取服务层需要的配置
func (c *AppConfig) GetServiceConfig() service.ServiceConfig {
	timeout, _ := util.ParseDuration(c.AI.Timeout)
	return service.ServiceConfig{
		Notes: service.NotesServiceConfig{
			Persistence: c.App.Persistence,
			SpecialTags: c.Notes.SpecialTags,
		},
		Tagging: service.TaggingConfig{
			Enabled: c.AI.Enabled,
			BaseURL: c.AI.BaseURL,
			APIKey:  c.AI.APIKey,
			Model:   c.AI.Model,
			MaxTags: c.AI.MaxTags,
			Timeout: timeout,
		},
		Backup: service.BackupConfig{
			Enabled: c.Backup.Enabled,
			Cron:    c.Backup.Cron,
			Storage: c.Backup.Storage,
		},
	}
}
