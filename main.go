package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/embedcache/embedcache/internal/cache"
	"github.com/embedcache/embedcache/internal/config"
	"github.com/embedcache/embedcache/internal/logging"
	"github.com/embedcache/embedcache/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
	showStats   bool
	clearCache  bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
// 这个二进制只是缓存的外部协作方：校验配置、查看统计、清理缓存，
// 不包含任何缓存内部逻辑。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["cache_dir"] = cfg.Global.CacheDirectory
		fields["max_bytes"] = cfg.Global.MaxCacheSize.Bytes()
		fields["version"] = version.Full()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	if !opts.showStats && !opts.clearCache {
		fmt.Fprintln(stdErr, "请指定操作: -stats | -clear | -check-config | -version")
		return 2
	}

	c, err := cache.New(cache.Options{
		Directory: cfg.Global.CacheDirectory,
		MaxBytes:  cfg.Global.MaxCacheSize.Bytes(),
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(stdErr, "打开缓存失败: %v\n", err)
		return 1
	}

	if opts.clearCache {
		before := c.Stats()
		c.Clear()
		logger.WithFields(logging.CacheFields(before.Directory, before.Count, before.TotalBytes)).
			Info("缓存已清理")
		fmt.Fprintf(stdOut, "已清理 %d 个条目（%d 字节）: %s\n",
			before.Count, before.TotalBytes, before.Directory)
		return 0
	}

	st := c.Stats()
	fmt.Fprintf(stdOut, "目录: %s\n条目: %d\n占用: %d 字节\n", st.Directory, st.Count, st.TotalBytes)
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("embedcache", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
		showStats  bool
		clearAll   bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 EMBEDCACHE_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")
	fs.BoolVar(&showStats, "stats", false, "输出缓存统计后退出")
	fs.BoolVar(&clearAll, "clear", false, "清空缓存目录后退出")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("EMBEDCACHE_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
		showStats:   showStats,
		clearCache:  clearAll,
	}, nil
}
