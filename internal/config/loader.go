package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/embedcache/embedcache/internal/cache"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。配置文件缺失
// 不算错误：缓存必须在零配置下可用，此时全部使用默认值。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(byteSizeDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absDir, err := filepath.Abs(cfg.Global.CacheDirectory)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.CacheDirectory = absDir

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// 缓存目录的默认值单一来源于 cache 包，避免同一路径散落多处字面量。
	v.SetDefault("CacheDirectory", cache.DefaultDirectory())
	v.SetDefault("MaxCacheSize", cache.DefaultMaxBytes)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.CacheDirectory == "" {
		g.CacheDirectory = cache.DefaultDirectory()
	}
	if g.MaxCacheSize.Bytes() == 0 {
		g.MaxCacheSize = ByteSize(cache.DefaultMaxBytes)
	}
	if g.LogLevel == "" {
		g.LogLevel = "info"
	}
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(ByteSize(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return ByteSize(0), nil
			}
			parsed, err := parseByteSize(v)
			if err != nil {
				return nil, fmt.Errorf("无法解析 MaxCacheSize 字段: %s", v)
			}
			return ByteSize(parsed), nil
		case int:
			return ByteSize(v), nil
		case int64:
			return ByteSize(v), nil
		case float64:
			return ByteSize(int64(v)), nil
		case ByteSize:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 ByteSize 类型: %T", v)
		}
	}
}
