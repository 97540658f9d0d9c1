package middleware

import (
	"strings"

	"github.com/haierkeys/flownote-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
// The language comes from the lang query, the lang header, then Accept-Language
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		} else if s = c.GetHeader("Accept-Language"); len(s) != 0 {
			lang = strings.SplitN(strings.SplitN(s, ",", 2)[0], ";", 2)[0]
		}

		lang = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "-", "_"))
		if lang == "zh" {
			lang = "zh_cn"
		}

		trans, found := uni.GetTranslator(strings.SplitN(lang, "_", 2)[0])

		if found {
			c.Set("trans", trans)
		} else {
			trans, _ := uni.GetTranslator("en")
			c.Set("trans", trans)
		}

		_ = code.SetGlobalDefaultLang(lang)

		c.Next()
	}
}
