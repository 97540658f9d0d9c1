// Package fileurl path helpers shared by storage drivers and startup code
// Package fileurl 存储驱动与启动流程共用的路径工具
package fileurl

import (
	"os"
	"path"
	"strings"
)

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(p string) bool {
	s, err := os.Stat(p)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist reports whether the path exists
// IsExist 判断路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil || os.IsExist(err)
}

// CreatePath creates dst and its parents when missing
// CreatePath 目录不存在时创建
func CreatePath(dst string, perm os.FileMode) error {
	if IsExist(dst) {
		return nil
	}
	return os.MkdirAll(dst, perm)
}

// PathSuffixCheckAdd checks path suffix, adds it if not exists
// PathSuffixCheckAdd 检查路径后缀，如果没有则添加
func PathSuffixCheckAdd(p string, suffix string) string {
	if !strings.HasSuffix(p, suffix) {
		p = p + suffix
	}
	return p
}

// JoinKey prefixes an object key with a configured custom path
// Leading slashes are dropped so keys stay relative to the bucket root
// JoinKey 为对象键加上自定义路径前缀，去除前导斜杠
func JoinKey(prefix, key string) string {
	key = strings.TrimLeft(key, "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return path.Clean(key)
	}
	return path.Clean(PathSuffixCheckAdd(prefix, "/") + key)
}
