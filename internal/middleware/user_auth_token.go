package middleware

import (
	"strings"

	"github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// tokenFromRequest reads the bearer token from the query or headers
func tokenFromRequest(c *gin.Context) string {
	var token string
	if s, exist := c.GetQuery("authorization"); exist {
		token = s
	} else if s := c.GetHeader("Authorization"); len(s) != 0 {
		token = s
	} else if s, exist := c.GetQuery("token"); exist {
		token = s
	} else if s = c.GetHeader("Token"); len(s) != 0 {
		token = s
	}
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// UserAuthTokenWithConfig 用户 Token 认证中间件（使用注入的密钥）
// Requests without a valid token are rejected
func UserAuthTokenWithConfig(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := tokenFromRequest(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		if err := app.SetTokenToContextWithKey(c, token, secretKey); err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalUserAuthToken attaches the identity when a token is present
// A request without a token continues anonymously; an invalid token is still rejected
// OptionalUserAuthToken 携带令牌时解析身份，未携带时以匿名身份继续，令牌无效时拒绝
func OptionalUserAuthToken(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		if err := app.SetTokenToContextWithKey(c, token, secretKey); err != nil {
			app.NewResponse(c).ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}

		c.Next()
	}
}
