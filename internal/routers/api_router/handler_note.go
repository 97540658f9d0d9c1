package api_router

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/dto"
	pkgapp "github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/code"
	apperrors "github.com/haierkeys/flownote-service/pkg/errors"
	"github.com/haierkeys/flownote-service/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// Create 创建笔记
// @Summary 创建笔记
// @Description 标题与标签由内容推导；AI 标签失败时使用手动标签并在 taggingMessage 中说明
// @Tags 笔记
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "笔记内容"
// @Success 200 {object} pkgapp.Res{data=dto.NoteSaveResultDTO} "成功"
// @Router /api/note [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	result, err := h.App.NoteService.Create(ctx, h.identity(c), params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// Update 更新笔记
// @Summary 更新笔记
// @Tags 笔记
// @Accept json
// @Produce json
// @Param params body dto.NoteUpdateRequest true "笔记内容"
// @Success 200 {object} pkgapp.Res{data=dto.NoteSaveResultDTO} "成功"
// @Router /api/note [put]
func (h *NoteHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Update.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	result, err := h.App.NoteService.Update(ctx, h.identity(c), params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// Delete 删除笔记
// @Summary 删除笔记
// @Tags 笔记
// @Produce json
// @Param params query dto.NoteIDRequest true "笔记 ID"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/note [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteIDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Delete.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	if err := h.App.NoteService.Delete(ctx, h.identity(c), params.ID); err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Get 获取单条笔记
// @Summary 获取笔记详情
// @Tags 笔记
// @Produce json
// @Param params query dto.NoteIDRequest true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/note [get]
func (h *NoteHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteIDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Get.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Get(ctx, h.identity(c), params.ID)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// List 获取笔记列表
// @Summary 获取笔记列表
// @Description 按创建时间倒序；tags 为逗号分隔，笔记须包含全部标签；keyword 不区分大小写匹配标题与内容
// @Tags 笔记
// @Produce json
// @Param params query dto.NoteListRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.NoteDTO}} "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.List.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}

	notes, count, err := h.App.NoteService.List(ctx, h.identity(c), listFilter(params), pager)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pager.TotalRows = count
	response.ToResponsePaged(code.Success, notes, *pager)
}

// listFilter parses the comma separated tag list of a list request
func listFilter(params *dto.NoteListRequest) *dto.NoteListFilter {
	filter := &dto.NoteListFilter{Tags: []string{}, Keyword: params.Keyword}
	for _, item := range strings.Split(params.Tags, ",") {
		if tag, ok := util.NormalizeTag(item); ok {
			filter.Tags = append(filter.Tags, tag)
		}
	}
	return filter
}

// Render 解析笔记引用
// @Summary 渲染笔记
// @Description 将 [[note:ID]] 引用解析为被引用笔记的名称，不存在的引用标记为 not found，并返回 HTML
// @Tags 笔记
// @Produce json
// @Param params query dto.NoteIDRequest true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteRenderDTO} "成功"
// @Router /api/note/render [get]
func (h *NoteHandler) Render(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteIDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Render.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	rendered, err := h.App.NoteService.Render(ctx, h.identity(c), params.ID)
	if err != nil {
		h.logError(ctx, "NoteHandler.Render", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(rendered))
}

// Backlinks 引用了指定笔记的笔记
// @Summary 反向链接
// @Tags 笔记
// @Produce json
// @Param params query dto.NoteIDRequest true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=[]dto.NoteDTO} "成功"
// @Router /api/note/backlinks [get]
func (h *NoteHandler) Backlinks(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteIDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Backlinks.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	notes, err := h.App.NoteService.Backlinks(ctx, h.identity(c), params.ID)
	if err != nil {
		h.logError(ctx, "NoteHandler.Backlinks", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(notes))
}

// Activity 最近五周活跃度
// @Summary 活跃度网格
// @Tags 笔记
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.ActivityDTO} "成功"
// @Router /api/notes/activity [get]
func (h *NoteHandler) Activity(c *gin.Context) {
	ctx := c.Request.Context()
	activity, err := h.App.NoteService.Activity(ctx, h.identity(c), time.Now())
	if err != nil {
		h.logError(ctx, "NoteHandler.Activity", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(activity))
}

// Export 导出全部笔记
// @Summary 导出笔记
// @Description 以 JSON 文件下载全部笔记，文件名 flownote_notes_YYYY-MM-DD.json
// @Tags 笔记
// @Produce json
// @Success 200 {file} file "JSON 文件"
// @Router /api/notes/export [get]
func (h *NoteHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	file, err := h.App.NoteService.Export(ctx, h.identity(c), time.Now())
	if err != nil {
		h.logError(ctx, "NoteHandler.Export", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"; filename*=UTF-8''"+url.PathEscape(file.FileName))
	c.Data(http.StatusOK, "application/json; charset=utf-8", file.Data)
}
