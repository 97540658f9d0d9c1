package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	internalApp "github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/pkg/fileurl"
	"github.com/haierkeys/flownote-service/pkg/util"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultConfigPath where the embedded config is written on first run
const defaultConfigPath = "config/config.yaml"

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

// runningServer guards the server replaced by config reloads
type runningServer struct {
	mu sync.Mutex
	s  *Server
}

func (r *runningServer) get() *Server {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s
}

// restart closes the current server and starts a new one from runEnv
func (r *runningServer) restart(runEnv *runFlags) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.s.sc.SendCloseSignal(nil)
	if err := r.s.sc.WaitClosed(); err != nil {
		r.s.logger.Warn("previous server closed with error", zap.Error(err))
	}

	s, err := NewServer(runEnv)
	if err != nil {
		bootstrapLogger.Error("service restart err", zap.Error(err))
		return
	}
	r.s = s
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run the FlowNote HTTP service // 运行 FlowNote HTTP 服务",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				} else {
					bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
				}
			}

			if len(runEnv.config) == 0 {
				runEnv.config = findConfig()
			}
			if len(runEnv.config) == 0 {
				bootstrapLogger.Warn("config file not found, creating default config")
				if err := writeDefaultConfig(defaultConfigPath); err != nil {
					bootstrapLogger.Error("config file auto create error", zap.Error(err))
					return
				}
				runEnv.config = defaultConfigPath
				bootstrapLogger.Info("config file auto create successfully", zap.String("path", runEnv.config))
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}
			current := &runningServer{s: s}

			go watchConfig(runEnv, current)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			s = current.get()
			s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			s.sc.SendCloseSignal(nil)

			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}

// writeDefaultConfig writes the embedded config with a freshly generated token secret
// writeDefaultConfig 写入内置默认配置，并生成随机令牌密钥
func writeDefaultConfig(path string) error {
	content := strings.Replace(configDefault, internalApp.DefaultAuthTokenKey, util.GetRandomString(32), 1)
	if err := fileurl.CreatePath(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0666)
}

// watchConfig restarts the server whenever the config file is written
// watchConfig 监听配置文件写入并重启服务
func watchConfig(runEnv *runFlags, current *runningServer) {
	w := watcher.New()

	// 每个监听周期至多接收 1 个事件，只关心写入
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				bootstrapLogger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				current.restart(runEnv)
			case err := <-w.Error:
				bootstrapLogger.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				bootstrapLogger.Info("config watcher closed")
				return
			}
		}
	}()

	if err := w.Add(runEnv.config); err != nil {
		bootstrapLogger.Error("config watcher file error", zap.Error(err))
		return
	}
	if err := w.Start(5 * time.Second); err != nil {
		bootstrapLogger.Error("config watcher start error", zap.Error(err))
	}
}
