package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize 提供更灵活的容量反序列化能力，兼容纯字节整数与 "512MB"、"50GB"
// 这类带单位的写法。所有单位都按 1024 进位（KB 与 KiB 等价）。
type ByteSize int64

var sizeUnits = map[string]int64{
	"":    1,
	"B":   1,
	"KB":  1 << 10,
	"KIB": 1 << 10,
	"MB":  1 << 20,
	"MIB": 1 << 20,
	"GB":  1 << 30,
	"GIB": 1 << 30,
	"TB":  1 << 40,
	"TIB": 1 << 40,
}

// UnmarshalText 使 Viper 可以识别 "50GB"、"1.5GiB" 或纯数字字节值等配置写法。
func (b *ByteSize) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*b = ByteSize(0)
		return nil
	}

	parsed, err := parseByteSize(raw)
	if err != nil {
		return err
	}
	*b = ByteSize(parsed)
	return nil
}

// Bytes 返回真实的字节数，便于调用方计算。
func (b ByteSize) Bytes() int64 {
	return int64(b)
}

// parseByteSize 解析 "数字[单位]" 形式的容量字符串，数字部分允许小数。
func parseByteSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)

	split := len(trimmed)
	for split > 0 {
		ch := trimmed[split-1]
		if ch >= '0' && ch <= '9' || ch == '.' {
			break
		}
		split--
	}

	numPart := strings.TrimSpace(trimmed[:split])
	unitPart := strings.ToUpper(strings.TrimSpace(trimmed[split:]))

	factor, ok := sizeUnits[unitPart]
	if !ok {
		return 0, fmt.Errorf("invalid size unit: %s", value)
	}

	if !strings.Contains(numPart, ".") {
		n, err := strconv.ParseInt(numPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size value: %s", value)
		}
		return n * factor, nil
	}

	f, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %s", value)
	}
	return int64(f * float64(factor)), nil
}

// GlobalConfig 描述缓存与日志的全局运行时行为。
type GlobalConfig struct {
	CacheDirectory string   `mapstructure:"CacheDirectory"`
	MaxCacheSize   ByteSize `mapstructure:"MaxCacheSize"`
	LogLevel       string   `mapstructure:"LogLevel"`
	LogFilePath    string   `mapstructure:"LogFilePath"`
	LogMaxSize     int      `mapstructure:"LogMaxSize"`
	LogMaxBackups  int      `mapstructure:"LogMaxBackups"`
	LogCompress    bool     `mapstructure:"LogCompress"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
}
