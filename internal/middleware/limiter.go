package middleware

import (
	"math"
	"strconv"

	"github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/code"
	"github.com/haierkeys/flownote-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter rejects requests whose bucket is empty; paths without a rule pass through
// RateLimiter 令牌桶为空时拒绝请求，未配置规则的路径直接放行
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket, ok := l.GetBucket(l.Key(c))
		if !ok {
			c.Next()
			return
		}
		if bucket.TakeAvailable(1) == 0 {
			retry := 1
			if rate := bucket.Rate(); rate > 0 && rate < 1 {
				retry = int(math.Ceil(1 / rate))
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
