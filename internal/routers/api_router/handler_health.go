package api_router

import (
	"runtime"
	"time"

	"github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/dto"
	pkgapp "github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// Check 健康检查接口
// @Summary 健康检查
// @Description 检查数据库与本地存储，并附带主机资源概况
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.HealthDTO}
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	health := dto.HealthDTO{
		Status:      "healthy",
		Persistence: h.App.Config().App.Persistence,
		Uptime:      time.Since(h.App.StartTime).Round(time.Second).String(),
		Goroutines:  runtime.NumGoroutine(),
		WorkerPool:  h.App.WorkerPool().GetMetrics(),
		WriteQueue:  h.App.WriteQueueManager().GetMetrics(),
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		health.OS = info.Platform + " " + info.PlatformVersion
	}
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		health.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		health.MemPercent = vm.UsedPercent
	}

	if err := h.App.Ping(ctx); err != nil {
		h.App.Logger().Warn("health check failed", zap.Error(err))
		health.Status = "unhealthy"
		pkgapp.NewResponse(c).ToResponse(code.Failed.WithDetails(err.Error()).WithData(health))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(health))
}
