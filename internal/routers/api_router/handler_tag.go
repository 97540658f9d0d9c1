package api_router

import (
	"github.com/haierkeys/flownote-service/internal/app"
	pkgapp "github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/code"
	apperrors "github.com/haierkeys/flownote-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// TagHandler 标签 API 路由处理器
type TagHandler struct {
	*Handler
}

// NewTagHandler 创建 TagHandler 实例
func NewTagHandler(a *app.App) *TagHandler {
	return &TagHandler{Handler: NewHandler(a)}
}

// List 全部标签
// @Summary 标签列表
// @Tags 标签
// @Produce json
// @Success 200 {object} pkgapp.Res{data=[]string} "成功"
// @Router /api/tags [get]
func (h *TagHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	tags, err := h.App.NoteService.AllTags(ctx, h.identity(c))
	if err != nil {
		h.logError(ctx, "TagHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(tags))
}

// Tree 标签层级树
// @Summary 标签树
// @Description 置顶标签按配置顺序位于 special，其余根节点按字母序位于 regular
// @Tags 标签
// @Produce json
// @Success 200 {object} pkgapp.Res{data=tagtree.Forest} "成功"
// @Router /api/tags/tree [get]
func (h *TagHandler) Tree(c *gin.Context) {
	ctx := c.Request.Context()
	forest, err := h.App.NoteService.TagTree(ctx, h.identity(c))
	if err != nil {
		h.logError(ctx, "TagHandler.Tree", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(forest))
}
