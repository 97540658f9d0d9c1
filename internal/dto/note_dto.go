// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/flownote-service/pkg/timex"
)

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Tags         []string   `json:"tags"`
	ImageDataURI string     `json:"imageDataUri,omitempty"`
	CreatedAt    timex.Time `json:"createdAt"`
	UpdatedAt    timex.Time `json:"updatedAt"`
}

// Tagging outcomes reported with a saved note
// 保存笔记时的 AI 标签结果
const (
	TaggingStatusOK       = "ok"
	TaggingStatusFailed   = "failed"
	TaggingStatusDisabled = "disabled"
)

// NoteSaveResultDTO saved note plus the AI tagging outcome
// NoteSaveResultDTO 保存后的笔记及 AI 标签结果
type NoteSaveResultDTO struct {
	Note           *NoteDTO `json:"note"`
	TaggingStatus  string   `json:"taggingStatus"`            // ok / failed / disabled
	TaggingMessage string   `json:"taggingMessage,omitempty"` // Shown to the user when tagging failed // 标签失败时展示给用户
}

// NoteCreateRequest Request parameters for creating a note
// NoteCreateRequest 创建笔记的请求参数
// Title and tags are derived from content and cannot be sent
type NoteCreateRequest struct {
	Content      string `json:"content" form:"content" binding:"max=100000"`
	ImageDataURI string `json:"imageDataUri" form:"imageDataUri" binding:"omitempty,max=7200000,datauri"`
}

// NoteUpdateRequest Request parameters for updating a note
// NoteUpdateRequest 更新笔记的请求参数
type NoteUpdateRequest struct {
	ID           string `json:"id" form:"id" binding:"required,max=64"`
	Content      string `json:"content" form:"content" binding:"max=100000"`
	ImageDataURI string `json:"imageDataUri" form:"imageDataUri" binding:"omitempty,max=7200000,datauri"`
}

// NoteIDRequest Request parameters addressing a single note
// NoteIDRequest 指定单条笔记的请求参数
type NoteIDRequest struct {
	ID string `json:"id" form:"id" binding:"required,max=64"`
}

// NoteListRequest Request parameters for listing notes
// NoteListRequest 笔记列表请求参数
type NoteListRequest struct {
	// Tags comma separated; a note must carry every one
	// Tags 逗号分隔，笔记必须包含全部标签
	Tags    string `json:"tags" form:"tags" binding:"omitempty,tag_list"`
	Keyword string `json:"keyword" form:"keyword" binding:"max=200"`
}

// NoteListFilter parsed list filter
// NoteListFilter 解析后的列表过滤条件
type NoteListFilter struct {
	Tags    []string
	Keyword string
}

// MentionDTO one resolved [[note:ID]] reference
// MentionDTO 解析后的笔记引用
type MentionDTO struct {
	NoteID string `json:"noteId"`
	Label  string `json:"label"`
	Found  bool   `json:"found"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// SegmentDTO ordered piece of rendered content
// SegmentDTO 渲染内容的有序片段
type SegmentDTO struct {
	Text    string      `json:"text"`
	Mention *MentionDTO `json:"mention,omitempty"`
}

// NoteRenderDTO note content with mentions resolved
// NoteRenderDTO 解析引用后的笔记内容
type NoteRenderDTO struct {
	Note     *NoteDTO     `json:"note"`
	Segments []SegmentDTO `json:"segments"`
	Mentions []MentionDTO `json:"mentions"`
	HTML     string       `json:"html"`
}

// ParseRequest Request parameters for stateless content parsing
// ParseRequest 无状态内容解析请求参数
type ParseRequest struct {
	Content string `json:"content" form:"content" binding:"max=100000"`
}

// ParseResultDTO title, tags and mentions derived from content
// ParseResultDTO 从内容推导出的标题、标签与引用
type ParseResultDTO struct {
	Title    string       `json:"title"`
	Tags     []string     `json:"tags"`
	Mentions []MentionDTO `json:"mentions"`
}

// ActivityDayDTO one cell of the activity grid
// ActivityDayDTO 活跃度网格中的一天
type ActivityDayDTO struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Count   int    `json:"count"`
	Level   int    `json:"level"` // 0..4
	IsToday bool   `json:"isToday"`
}

// ActivityStatsDTO collection summary shown beside the grid
// ActivityStatsDTO 网格旁显示的集合统计
type ActivityStatsDTO struct {
	NoteCount      int `json:"noteCount"`
	TagCount       int `json:"tagCount"`
	DaysSinceFirst int `json:"daysSinceFirst"`
}

// ActivityDTO five Monday-first weeks of note counts
// ActivityDTO 以周一开始的五周笔记数量
type ActivityDTO struct {
	Weeks       [][]ActivityDayDTO `json:"weeks"`
	MonthLabels []string           `json:"monthLabels"`
	Stats       ActivityStatsDTO   `json:"stats"`
}

// ExportFileDTO exported collection ready to be downloaded
// ExportFileDTO 可供下载的导出文件
type ExportFileDTO struct {
	FileName string
	Data     []byte
}
