package task

import (
	"github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		app:       appContainer,
	}
}

// RegisterTasks builds every registered task; one failing factory does not stop the others
// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks() error {
	var firstErr error
	for _, factory := range GetFactories() {
		t, err := factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if t == nil {
			continue
		}
		m.scheduler.AddTask(t)
	}
	return firstErr
}

// Tasks returns the registered tasks
func (m *Manager) Tasks() []Task {
	return m.scheduler.tasks
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
