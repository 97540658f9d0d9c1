package app

import (
	"strings"

	"github.com/haierkeys/flownote-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

type Pager struct {
	Page      int `json:"page"`      // Page number // 页码
	PageSize  int `json:"pageSize"`  // Page size // 每页数量
	TotalRows int `json:"totalRows"` // Total rows // 总行数
}

// PaginationRequest pagination request parameters // 分页请求参数
type PaginationRequest struct {
	Page     int `json:"page" form:"page"`         // Page number // 页码
	PageSize int `json:"pageSize" form:"pageSize"` // Page size // 每页数量
}

type ListRes struct {
	List  any   `json:"list"`  // Data list // 数据清单
	Pager Pager `json:"pager"` // Pagination info // 翻页信息
}

// Res is the unified response envelope: Code/Status/Message/Data
// Optional Details and Context are omitted when empty
// Res 是统一的响应结构：Code/Status/Message/Data
// 可选字段 Details 与 Context 为空时不序列化
type Res struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
	Context string `json:"context,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// NewPager reads page and pageSize from the request
// NewPager 从请求中读取分页参数
func NewPager(c *gin.Context, totalRows int) *Pager {
	return &Pager{
		Page:      GetPage(c),
		PageSize:  GetPageSize(c),
		TotalRows: totalRows,
	}
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

// NewRes builds the envelope for a code
// NewRes 根据响应码构建响应体
func NewRes(codeObj *code.Code) Res {
	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}
	if codeObj.HaveContext() {
		content.Context = codeObj.Context()
	}
	return content
}

// ToResponse writes the envelope for codeObj
// ToResponse 输出响应
func (r *Response) ToResponse(codeObj *code.Code) {
	r.Ctx.Set("status_code", codeObj.StatusCode())
	r.send(codeObj.StatusCode(), NewRes(codeObj))
}

// ToResponseList writes a paged list envelope
// ToResponseList 输出分页列表响应
func (r *Response) ToResponseList(codeObj *code.Code, list any, totalRows int) {
	r.ToResponsePaged(codeObj, list, Pager{
		Page:      GetPage(r.Ctx),
		PageSize:  GetPageSize(r.Ctx),
		TotalRows: totalRows,
	})
}

// ToResponsePaged writes a list envelope with an explicit pager
func (r *Response) ToResponsePaged(codeObj *code.Code, list any, pager Pager) {
	content := NewRes(codeObj.WithData(ListRes{List: list, Pager: pager}))
	r.Ctx.Set("status_code", codeObj.StatusCode())
	r.send(codeObj.StatusCode(), content)
}

func (r *Response) send(statusCode int, content any) {
	r.Ctx.JSON(statusCode, content)
}
