package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// CacheFields 提供缓存目录/条目数/字节数字段，供 stats、clear 等操作日志复用。
func CacheFields(directory string, count int, totalBytes int64) logrus.Fields {
	return logrus.Fields{
		"cache_dir":   directory,
		"entries":     count,
		"total_bytes": totalBytes,
	}
}
