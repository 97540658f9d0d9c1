package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldClientID 匿名客户端 ID 字段
	FieldClientID = "clientId"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldBackend 存储后端字段（local / remote）
	FieldBackend = "backend"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldPath 文件路径字段
	FieldPath = "path"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldTask 定时任务名称字段
	FieldTask = "task"

	// FieldKey 存储键字段
	FieldKey = "key"
)
