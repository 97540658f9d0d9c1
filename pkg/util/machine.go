package util

import (
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var (
	machineID     string
	machineIDOnce sync.Once
)

// GetMachineID returns a stable identifier for the current host, or "" when none is available
// The value salts token signing keys so a copied config does not validate tokens on another host
// GetMachineID 获取当前机器的唯一标识符，获取失败返回空字符串
func GetMachineID() string {
	machineIDOnce.Do(func() {
		if id, err := machineid.ProtectedID("flownote"); err == nil && id != "" {
			machineID = id
			return
		}
		machineID = boardSerial()
	})
	return machineID
}

// boardSerial 读取主板序列号（仅 Linux）
func boardSerial() string {
	if runtime.GOOS != "linux" {
		return ""
	}
	content, err := os.ReadFile("/sys/class/dmi/id/board_serial")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}
