package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	internalApp "github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/dao"
	"github.com/haierkeys/flownote-service/internal/routers"
	"github.com/haierkeys/flownote-service/internal/task"
	"github.com/haierkeys/flownote-service/pkg/kvstore"
	"github.com/haierkeys/flownote-service/pkg/logger"
	"github.com/haierkeys/flownote-service/pkg/safe_close"
	"github.com/haierkeys/flownote-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	validatorV10 "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"go.uber.org/zap"
)

// weakSecretKeys secrets that trigger the startup warning
var weakSecretKeys = map[string]bool{
	"":                              true,
	"6666":                          true,
	internalApp.DefaultAuthTokenKey: true,
}

// serverShutdownTimeout bounds http.Server.Shutdown
const serverShutdownTimeout = 5 * time.Second

const banner = `
    ________                 _   __      __
   / ____/ /___ _      __   / | / /___  / /____
  / /_  / / __ \ | /| / /  /  |/ / __ \/ __/ _ \
 / __/ / / /_/ / |/ |/ /  / /|  / /_/ / /_/  __/
/_/   /_/\____/|__/|__/  /_/ |_/\____/\__/\___/   `

// Server 一次运行所持有的资源；配置变更时整体重建
type Server struct {
	logger *zap.Logger
	config *internalApp.AppConfig
	ut     *ut.UniversalTranslator
	sc     *safe_close.SafeClose
	app    *internalApp.App
}

// NewServer loads the config and starts the public and private listeners
// NewServer 加载配置并启动公共与私有监听
func NewServer(runEnv *runFlags) (*Server, error) {
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyRunFlags(appConfig, runEnv)

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	if s.logger, err = logger.NewLogger(logger.Config{
		Level:      appConfig.Log.Level,
		File:       appConfig.Log.File,
		Production: appConfig.Log.Production,
	}); err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	warnWeakSecret(appConfig, s.logger)

	if err := ensureDirs(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	if s.app, err = buildApp(context.Background(), appConfig, s.logger); err != nil {
		return nil, err
	}

	if s.ut, err = initValidator(); err != nil {
		return nil, fmt.Errorf("initValidator: %w", err)
	}

	// 启动调度器
	manager := task.NewManager(s.logger, s.sc, s.app)
	if err := manager.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
	}
	manager.Start()

	s.logger.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	s.serve("api", appConfig.Server.HttpPort, routers.NewRouter(s.app, s.ut))
	s.serve("private api", appConfig.Server.PrivateHttpListen, routers.NewPrivateRouterWithLogger(appConfig.Server.RunMode, s.logger))

	// App Container 在监听关闭后优雅退出
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal

		ctx, cancel := context.WithTimeout(context.Background(), internalApp.DefaultShutdownTimeout)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
		}
	})

	return s, nil
}

// applyRunFlags lets command line flags override the file
func applyRunFlags(cfg *internalApp.AppConfig, runEnv *runFlags) {
	runMode := runEnv.runMode
	if runMode == "" {
		runMode = cfg.Server.RunMode
	}
	if runMode == "" {
		runMode = gin.ReleaseMode
	}
	gin.SetMode(runMode)
	cfg.Server.RunMode = gin.Mode()

	if runEnv.port != "" {
		cfg.Server.HttpPort = ":" + strings.TrimPrefix(runEnv.port, ":")
	}
}

// serve runs one http listener under the safe close group, empty addr disables it
func (s *Server) serve(name, addr string, handler http.Handler) {
	if addr == "" {
		return
	}
	s.logger.Info("http listener", zap.String("name", name), zap.String("addr", addr))

	srv := &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(s.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()

		select {
		case err := <-errChan:
			if !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error(name+" service err", zap.Error(err))
				s.sc.SendCloseSignal(err)
			}
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" service shutdown error", zap.Error(err))
			}
		}
	})
}

// buildApp opens the database and the local note store and wires the App Container
// buildApp 打开数据库与本地笔记存储并创建 App Container
func buildApp(ctx context.Context, cfg *internalApp.AppConfig, lg *zap.Logger) (*internalApp.App, error) {
	dbConfig := cfg.Database
	dbConfig.Debug = cfg.Server.RunMode == gin.DebugMode

	db, err := dao.NewDBEngineWithConfig(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	lg.Info("database connected", zap.String("type", dbConfig.Type), zap.Int("replicas", len(dbConfig.Replicas)))

	kv, err := kvstore.New(ctx, cfg.KVStore)
	if err != nil {
		return nil, fmt.Errorf("initKVStore: %w", err)
	}

	a, err := internalApp.NewApp(cfg, lg, db, kv)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	return a, nil
}

// warnWeakSecret 使用默认密钥时输出警告
func warnWeakSecret(cfg *internalApp.AppConfig, lg *zap.Logger) {
	if !weakSecretKeys[cfg.Security.AuthTokenKey] {
		return
	}

	line := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n⚠️  SECURITY WARNING: Using default secret key!\n\n"+
		"Please modify 'security.auth-token-key' in config.yaml\n"+
		"Generate a secure key with:\n  openssl rand -base64 32\n%s\n\n", line, line)

	lg.Warn("Using default secret key - please change security.auth-token-key in config.yaml")
}

// ensureDirs creates the directories the configured drivers write into
func ensureDirs(cfg *internalApp.AppConfig) error {
	var dirs []string
	if cfg.Log.File != "" {
		dirs = append(dirs, filepath.Dir(cfg.Log.File))
	}
	if cfg.Database.Type == "sqlite" {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}
	if cfg.KVStore.Type == kvstore.TypeFile {
		dirs = append(dirs, cfg.KVStore.Dir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// initValidator installs the custom validator into gin and registers en/zh messages
// initValidator 注册 gin 校验器与中英文翻译
func initValidator() (*ut.UniversalTranslator, error) {
	customValidator := validator.NewCustomValidator()
	binding.Validator = customValidator

	uni := ut.New(en.New(), en.New(), zh.New())

	validate, ok := customValidator.Engine().(*validatorV10.Validate)
	if !ok {
		return uni, nil
	}

	// 错误信息使用 json 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	zhTran, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	enTran, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}

	return uni, nil
}

// GetApp 获取 App Container
func (s *Server) GetApp() *internalApp.App {
	return s.app
}
