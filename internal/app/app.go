// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/flownote-service/internal/dao"
	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/internal/service"
	pkgapp "github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/kvstore"
	"github.com/haierkeys/flownote-service/pkg/workerpool"
	"github.com/haierkeys/flownote-service/pkg/writequeue"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao
	KV     kvstore.Store

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	RemoteNoteRepo domain.NoteRepository
	LocalNoteRepo  domain.NoteRepository
	NoteOwnerRepo  domain.NoteOwnerRepository

	// Service 层
	TaggingService service.TaggingService
	NoteService    service.NoteService
	BackupService  service.BackupService
	Metrics        *service.Metrics

	// 基础设施组件
	TokenManager pkgapp.TokenManager
	StartTime    time.Time

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// Options optional collaborators; zero values use the defaults
// Options 可选依赖，零值时使用默认实现
type Options struct {
	// Registerer receives the service metrics, prometheus.DefaultRegisterer when nil
	Registerer prometheus.Registerer
	// Tagger replaces the configured tagging service
	Tagger service.TaggingService
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
// kv: 本地后端键值存储（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, kv kvstore.Store, opts ...Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if kv == nil {
		return nil, fmt.Errorf("kvstore is required")
	}
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Registerer == nil {
		opt.Registerer = prometheus.DefaultRegisterer
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		KV:         kv,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	pkgapp.SetDefaultPagination(cfg.App.DefaultPageSize, cfg.App.MaxPageSize)

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 初始化 DAO（使用依赖注入）
	a.Dao = dao.New(db, logger, a.writeQueueMgr)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 初始化 Repository 层
	remote := dao.NewNoteRepository(a.Dao)
	a.RemoteNoteRepo = remote
	a.NoteOwnerRepo = remote
	a.LocalNoteRepo = dao.NewLocalNoteRepository(kv, a.writeQueueMgr, logger)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := cfg.GetServiceConfig()

	// 初始化 Service 层（依赖注入）
	a.Metrics = service.NewMetrics(opt.Registerer)
	a.TaggingService = opt.Tagger
	if a.TaggingService == nil {
		a.TaggingService = service.NewTaggingService(svcConfig.Tagging, a.workerPool, logger)
	}
	a.NoteService = service.NewNoteService(a.LocalNoteRepo, a.RemoteNoteRepo, a.TaggingService, svcConfig.Notes, a.Metrics, logger)

	backupService, err := service.NewBackupService(svcConfig.Backup, a.NoteOwnerRepo, a.RemoteNoteRepo, logger)
	if err != nil {
		return nil, err
	}
	a.BackupService = backupService

	logger.Info("App container initialized successfully",
		zap.String("persistence", cfg.App.Persistence),
		zap.Bool("aiTagging", svcConfig.Tagging.Enabled),
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	var errs []error
	if a.KV != nil {
		if err := a.KV.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close kvstore: %w", err))
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get sql.DB: %w", err))
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			a.logger.Info("Database connection closed")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close app: %v", errs)
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Name:      Name,
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// GetAuthTokenKey 获取 Token 密钥
func (a *App) GetAuthTokenKey() string {
	return a.config.Security.AuthTokenKey
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// WorkerPool 获取 Worker Pool
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// Ping 检查数据库与键值存储是否可用
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if _, err := a.KV.Get(ctx, "__ping__"); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return fmt.Errorf("kvstore: %w", err)
	}
	return nil
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue Manager -> 后台任务 -> 存储
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Worker Pool（停止接受新任务，等待现有任务完成）
	if a.workerPool != nil {
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
	}

	// 2. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}
	}

	// 3. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 4. 关闭存储
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
