package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CorsConfig 跨域配置
type CorsConfig struct {
	Enabled      bool     `yaml:"enabled" default:"true"`
	AllowOrigins []string `yaml:"allow-origins"`
}

// Cors builds the cross-origin middleware; an empty origin list allows every origin
// Cors 构建跨域中间件，未配置来源时允许全部来源
func Cors(cfg CorsConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Token", "Lang", "X-Client-Id", DefaultTraceIDHeader},
		ExposeHeaders: []string{"Content-Disposition", DefaultTraceIDHeader, "X-App-Version"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return cors.New(c)
}
