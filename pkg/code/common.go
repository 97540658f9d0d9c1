package code

// 通用
var (
	Success                 = NewSuss(200, lang{en: "Success", zh_cn: "成功"})
	Failed                  = NewError(400, lang{en: "Failed", zh_cn: "失败"})
	ErrorInvalidParams      = NewError(405, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorNotFoundAPI        = NewError(404, lang{en: "API not found", zh_cn: "找不到接口"})
	ErrorTooManyRequests    = NewError(429, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorServerInternal     = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorRequestTimeout     = NewError(504, lang{en: "Request timed out", zh_cn: "请求超时"})
	ErrorServerShutdown     = NewError(503, lang{en: "Server is shutting down", zh_cn: "服务正在关闭"})
	ErrorInvalidConfig      = NewError(506, lang{en: "Invalid configuration", zh_cn: "配置无效"})
	ErrorDBQuery            = NewError(510, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorLocalStore         = NewError(511, lang{en: "Local storage read/write failed", zh_cn: "本地存储读写失败"})
	ErrorInvalidStorageType = NewError(512, lang{en: "Unsupported storage type", zh_cn: "不支持的存储类型"})
	ErrorStorageUpload      = NewError(513, lang{en: "Storage upload failed", zh_cn: "存储上传失败"})
)

// 身份
var (
	ErrorNotUserAuthToken     = NewError(1001, lang{en: "Login required", zh_cn: "请先登录"})
	ErrorInvalidUserAuthToken = NewError(1002, lang{en: "Invalid user token", zh_cn: "用户令牌无效"})
	ErrorInvalidAuthToken     = NewError(1003, lang{en: "Token signature invalid", zh_cn: "令牌签名无效"})
	ErrorAuthTokenExpired     = NewError(1004, lang{en: "Token expired", zh_cn: "令牌已过期"})
	ErrorAuthTokenGenerate    = NewError(1005, lang{en: "Failed to generate token", zh_cn: "令牌生成失败"})
)

// 笔记
var (
	ErrorNoteContentEmpty = NewError(2001, lang{en: "Empty Note: please write something first", zh_cn: "笔记为空，请先输入内容"})
	ErrorNoteNotFound     = NewError(2002, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteSaveFailed   = NewError(2003, lang{en: "Failed to save note", zh_cn: "笔记保存失败"})
	ErrorNoteDeleteFailed = NewError(2004, lang{en: "Failed to delete note", zh_cn: "笔记删除失败"})
	ErrorNoteListFailed   = NewError(2005, lang{en: "Failed to load notes", zh_cn: "笔记加载失败"})
	ErrorNoNotesToExport  = NewError(2006, lang{en: "No notes to export", zh_cn: "没有可导出的笔记"})
	ErrorInvalidTag       = NewError(2007, lang{en: "Invalid tag", zh_cn: "标签格式无效"})
	ErrorNoteExportFailed = NewError(2008, lang{en: "Failed to export notes", zh_cn: "笔记导出失败"})
)

// 标签生成
var (
	ErrorTaggingFailed   = NewError(3001, lang{en: "AI tagging failed, manual tags were used", zh_cn: "AI 标签生成失败，已使用手动标签"})
	ErrorTaggingDisabled = NewError(3002, lang{en: "AI tagging is disabled", zh_cn: "AI 标签生成未启用"})
)
