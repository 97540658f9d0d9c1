package task

import (
	"sync"

	"github.com/haierkeys/flownote-service/internal/app"
)

// Factory builds a task from the application container
// A nil task with a nil error means the task is disabled by configuration
// Factory 基于 App Container 创建任务；返回 nil 任务表示已被配置禁用
type Factory func(appContainer *app.App) (Task, error)

// taskRegistry 全局任务注册表
var (
	taskRegistry  []Factory
	registryMutex sync.RWMutex
)

// RegisterWithApp 注册任务工厂函数
// 通常在各个任务文件的 init() 函数中调用
func RegisterWithApp(factory Factory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	taskRegistry = append(taskRegistry, factory)
}

// GetFactories 获取所有已注册的任务工厂
func GetFactories() []Factory {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	// 返回副本,避免外部修改
	factories := make([]Factory, len(taskRegistry))
	copy(factories, taskRegistry)
	return factories
}
