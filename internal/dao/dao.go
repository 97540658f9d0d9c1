// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/haierkeys/flownote-service/pkg/fileurl"
	"github.com/haierkeys/flownote-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path sqlite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/flownote.db"`

	UserName  string `yaml:"username"`
	Password  string `yaml:"password"`
	Host      string `yaml:"host" default:"127.0.0.1"`
	Port      int    `yaml:"port"`
	Name      string `yaml:"name" default:"flownote"`
	Charset   string `yaml:"charset" default:"utf8mb4"`
	ParseTime bool   `yaml:"parse-time" default:"true"`
	SSLMode   string `yaml:"ssl-mode" default:"disable"`

	TablePrefix  string `yaml:"table-prefix"`
	MaxIdleConns int    `yaml:"max-idle-conns" default:"10"`
	MaxOpenConns int    `yaml:"max-open-conns" default:"100"`

	// Replicas read-only DSNs routed through dbresolver, same driver as Type
	// Replicas 只读副本 DSN，驱动与 Type 相同
	Replicas []string `yaml:"replicas"`

	// Debug 打开 SQL 日志
	Debug bool `yaml:"-"`
}

// writeKeyer names the write-queue key a repository serializes on
type writeKeyer interface {
	GetKey(uid int64) string
}

// Dao 数据访问对象
type Dao struct {
	Db         *gorm.DB
	logger     *zap.Logger
	writeQueue *writequeue.Manager
	onceKeys   sync.Map
}

// New 创建 Dao
// writeQueue may be nil, in which case writes run directly
func New(db *gorm.DB, lg *zap.Logger, writeQueue *writequeue.Manager) *Dao {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Dao{Db: db, logger: lg, writeQueue: writeQueue}
}

func (d *Dao) DB() *gorm.DB {
	return d.Db
}

// Logger 返回日志器
func (d *Dao) Logger() *zap.Logger {
	return d.logger
}

// migrateOnce runs model.AutoMigrate for key the first time it is seen
func (d *Dao) migrateOnce(key string, fn func(db *gorm.DB) error) *gorm.DB {
	if _, loaded := d.onceKeys.LoadOrStore(key, true); !loaded {
		if err := fn(d.Db); err != nil {
			d.onceKeys.Delete(key)
			d.logger.Error("auto migrate failed", zap.String("key", key), zap.Error(err))
		}
	}
	return d.Db
}

// ExecuteWrite serializes fn with every other write on the same repository key
// ExecuteWrite 按仓储 key 串行执行写操作
func (d *Dao) ExecuteWrite(ctx context.Context, uid int64, r writeKeyer, fn func(db *gorm.DB) error) error {
	if d.writeQueue == nil {
		return fn(d.Db)
	}
	return d.writeQueue.Execute(ctx, r.GetKey(uid), func() error {
		return fn(d.Db)
	})
}

// NewDBEngineWithConfig opens the database described by c
// NewDBEngineWithConfig 根据配置打开数据库连接
func NewDBEngineWithConfig(c DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(c.Type, dsnFor(c))
	if err != nil {
		return nil, err
	}
	if c.Type == "sqlite" {
		if err := fileurl.CreatePath(filepath.Dir(c.Path), os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "create sqlite directory")
		}
	}

	logMode := logger.Silent
	if c.Debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀，`Note` 的表名应该是 `t_note`
			SingularTable: true,          // 使用单数表名
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", c.Type)
	}

	if len(c.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, dsn := range c.Replicas {
			rd, err := dialectorFor(c.Type, dsn)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, rd)
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, errors.Wrap(err, "register read replicas")
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	maxOpen := c.MaxOpenConns
	if c.Type == "sqlite" {
		// sqlite allows a single writer
		maxOpen = 1
	}
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Minute * 10)

	return db, nil
}

func dsnFor(c DatabaseConfig) string {
	switch c.Type {
	case "mysql":
		host := c.Host
		if c.Port > 0 {
			host = host + ":" + strconv.Itoa(c.Port)
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			host,
			c.Name,
			c.Charset,
			c.ParseTime,
		)
	case "postgres":
		port := c.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, port, c.UserName, c.Password, c.Name, c.SSLMode)
	default:
		return c.Path
	}
}

func dialectorFor(dbType, dsn string) (gorm.Dialector, error) {
	switch dbType {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	}
	return nil, errors.Errorf("unsupported database type %q", dbType)
}
