// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// Persistence modes
// 持久化模式
const (
	PersistenceAuto   = "auto"   // Identity → remote, anonymous → local // 有身份走远程，匿名走本地
	PersistenceLocal  = "local"  // Always the local key-value store // 始终使用本地键值存储
	PersistenceRemote = "remote" // Always the database, identity required // 始终使用数据库，需要身份
)

// Backend names used in logs and metrics
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Notes   NotesServiceConfig // Note related config // 笔记相关配置
	Tagging TaggingConfig      // AI tagging config // AI 标签配置
	Backup  BackupConfig       // Scheduled backup config // 定时备份配置
}

// NotesServiceConfig note service configuration
// NotesServiceConfig 笔记服务配置
type NotesServiceConfig struct {
	Persistence string   // auto / local / remote
	SpecialTags []string // Pinned tag roots in priority order // 置顶标签根节点，按优先级排序
}

// DefaultSpecialTags pinned tag roots when none are configured
// DefaultSpecialTags 未配置时的默认置顶标签
var DefaultSpecialTags = []string{"产品", "故障检测", "成长"}
