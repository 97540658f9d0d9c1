// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// VersionDTO version information for API response
// VersionDTO 版本信息 API 响应对象
type VersionDTO struct {
	Name      string `json:"name"`
	Version   string `json:"version"`   // Current version // 当前版本
	GitTag    string `json:"gitTag"`    // Git tag // Git 标签
	BuildTime string `json:"buildTime"` // Build time // 构建时间
}

// HealthDTO service health for API response
// HealthDTO 服务健康状态
type HealthDTO struct {
	Status      string  `json:"status"`
	Persistence string  `json:"persistence"`
	Uptime      string  `json:"uptime"`
	OS          string  `json:"os,omitempty"`
	CPUPercent  float64 `json:"cpuPercent"`
	MemPercent  float64 `json:"memPercent"`
	Goroutines  int     `json:"goroutines"`
	WorkerPool  any     `json:"workerPool,omitempty"`
	WriteQueue  any     `json:"writeQueue,omitempty"`
}
