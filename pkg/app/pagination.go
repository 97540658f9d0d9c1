package app

import (
	"github.com/haierkeys/flownote-service/pkg/convert"

	"github.com/gin-gonic/gin"
)

// PaginationConfig pagination configuration // 分页配置
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPaginationConfig default pagination configuration // 默认分页配置
var DefaultPaginationConfig = PaginationConfig{
	DefaultPageSize: 20,
	MaxPageSize:     100,
}

// SetDefaultPagination replaces the package pagination limits from configuration
// SetDefaultPagination 使用配置替换默认分页限制
func SetDefaultPagination(defaultSize, maxSize int) {
	if defaultSize > 0 {
		DefaultPaginationConfig.DefaultPageSize = defaultSize
	}
	if maxSize > 0 {
		DefaultPaginationConfig.MaxPageSize = maxSize
	}
}

func queryInt(c *gin.Context, key string) int {
	s, exist := c.GetQuery(key)
	if !exist {
		s = c.PostForm(key)
	}
	return convert.StrTo(s).MustInt()
}

func GetPage(c *gin.Context) int {
	if page := queryInt(c, "page"); page > 0 {
		return page
	}
	return 1
}

// GetPageSizeWithConfig gets page size (using injected configuration)
// GetPageSizeWithConfig 获取分页大小（使用注入的配置）
func GetPageSizeWithConfig(c *gin.Context, cfg PaginationConfig) int {
	return ClampPageSize(queryInt(c, "pageSize"), cfg)
}

// GetPageSize gets page size (using default configuration)
// GetPageSize 获取分页大小（使用默认配置）
func GetPageSize(c *gin.Context) int {
	return GetPageSizeWithConfig(c, DefaultPaginationConfig)
}

// ClampPageSize applies the default and maximum page size
func ClampPageSize(pageSize int, cfg PaginationConfig) int {
	if pageSize <= 0 {
		return cfg.DefaultPageSize
	}
	if pageSize > cfg.MaxPageSize {
		return cfg.MaxPageSize
	}
	return pageSize
}

func GetPageOffset(page, pageSize int) int {
	result := 0
	if page > 0 {
		result = (page - 1) * pageSize
	}

	return result
}
