package api_router

import (
	"github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/dto"
	"github.com/haierkeys/flownote-service/internal/service"
	pkgapp "github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParseHandler 内容解析处理器
type ParseHandler struct {
	*Handler
}

// NewParseHandler 创建 ParseHandler 实例
func NewParseHandler(a *app.App) *ParseHandler {
	return &ParseHandler{Handler: NewHandler(a)}
}

// Parse previews the title, tags and mentions a save would derive
// @Summary 解析内容
// @Tags 笔记
// @Accept json
// @Produce json
// @Param params body dto.ParseRequest true "内容"
// @Success 200 {object} pkgapp.Res{data=dto.ParseResultDTO} "成功"
// @Router /api/parse [post]
func (h *ParseHandler) Parse(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ParseRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ParseHandler.Parse.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	response.ToResponse(code.Success.WithData(service.ParseNote(params.Content)))
}
