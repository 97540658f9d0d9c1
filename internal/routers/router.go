package routers

import (
	"time"

	"github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/middleware"
	"github.com/haierkeys/flownote-service/internal/routers/api_router"
	"github.com/haierkeys/flownote-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// rateLimitedPaths are the endpoints that write or call the tagging service
var rateLimitedPaths = []string{"/api/note", "/api/parse", "/api/notes/export"}

// newMethodLimiter builds one token bucket per rate limited path
// newMethodLimiter 为每个限流路径创建令牌桶
func newMethodLimiter(perSecond int) limiter.Face {
	l := limiter.NewMethodLimiter()
	if perSecond <= 0 {
		return l
	}
	rules := make([]limiter.BucketRule, 0, len(rateLimitedPaths))
	for _, path := range rateLimitedPaths {
		rules = append(rules, limiter.BucketRule{
			Key:          path,
			FillInterval: time.Second,
			Capacity:     int64(perSecond),
			Quantum:      int64(perSecond),
		})
	}
	return l.AddBuckets(rules...)
}

// NewRouter 创建公共 HTTP 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	r := gin.New()
	if cfg.Cors.Enabled {
		r.Use(middleware.Cors(cfg.Cors))
	}

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(newMethodLimiter(cfg.App.RateLimitPerSecond)))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		noteHandler := api_router.NewNoteHandler(appContainer)
		tagHandler := api_router.NewTagHandler(appContainer)
		parseHandler := api_router.NewParseHandler(appContainer)

		// 无需身份
		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)
		api.POST("/parse", parseHandler.Parse)

		// 可选身份：匿名请求使用本地存储
		notes := api.Group("", middleware.OptionalUserAuthToken(cfg.Security.AuthTokenKey))
		{
			notes.GET("/notes", noteHandler.List)
			notes.GET("/notes/activity", noteHandler.Activity)
			notes.GET("/notes/export", noteHandler.Export)

			notes.GET("/note", noteHandler.Get)
			notes.POST("/note", noteHandler.Create)
			notes.PUT("/note", noteHandler.Update)
			notes.DELETE("/note", noteHandler.Delete)
			notes.GET("/note/render", noteHandler.Render)
			notes.GET("/note/backlinks", noteHandler.Backlinks)

			notes.GET("/tags", tagHandler.List)
			notes.GET("/tags/tree", tagHandler.Tree)
		}
	}

	r.NoRoute(middleware.NoFound())

	return r
}
