package middleware

import (
	"github.com/gin-gonic/gin"
)

// AppInfoWithConfig stores the service name and version on the request
func AppInfoWithConfig(name, version string) gin.HandlerFunc {

	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)
		c.Header("X-App-Version", version)

		c.Next()
	}
}
