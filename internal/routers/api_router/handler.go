// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"strings"

	"github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/internal/middleware"
	pkgapp "github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientIDHeader identifies an anonymous client so local notes stay per client
// ClientIDHeader 匿名客户端标识，用于区分本地笔记
const ClientIDHeader = "X-Client-Id"

const maxClientIDLen = 64

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// identity builds the caller identity from the verified token and the client id
// identity 根据已验证的令牌与客户端标识构建调用者身份
func (h *Handler) identity(c *gin.Context) domain.Identity {
	clientID := c.GetHeader(ClientIDHeader)
	if clientID == "" {
		clientID = c.Query("clientId")
	}
	clientID = strings.TrimSpace(clientID)
	if len(clientID) > maxClientIDLen {
		clientID = clientID[:maxClientIDLen]
	}
	return domain.Identity{UID: pkgapp.GetUID(c), ClientID: clientID}
}

// logError 记录带 traceId 的错误日志
func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
	)
}
