package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/embedcache/embedcache/internal/cache"
)

func TestParseCLIFlagsPriority(t *testing.T) {
	t.Setenv("EMBEDCACHE_CONFIG", "/tmp/env.toml")

	opts, err := parseCLIFlags([]string{})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/env.toml" {
		t.Fatalf("应优先使用环境变量，得到 %s", opts.configPath)
	}

	opts, err = parseCLIFlags([]string{"--config", "/tmp/flag.toml"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/flag.toml" {
		t.Fatalf("flag 应高于环境变量，得到 %s", opts.configPath)
	}
}

func TestParseCLIFlagsModes(t *testing.T) {
	opts, err := parseCLIFlags([]string{"--stats", "--clear", "--check-config"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if !opts.showStats || !opts.clearCache || !opts.checkOnly {
		t.Fatalf("模式标志应被解析: %+v", opts)
	}
}

func TestRunVersionOutput(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{showVersion: true})
	if code != 0 {
		t.Fatalf("version 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "embedcache") {
		t.Fatalf("version 输出应包含 embedcache 标识")
	}
}

func TestRunCheckConfigSuccess(t *testing.T) {
	useBufferWriters(t)
	cfgPath, _ := writeConfigFixture(t)
	code := run(cliOptions{configPath: cfgPath, checkOnly: true})
	if code != 0 {
		t.Fatalf("期望退出码 0，得到 %d", code)
	}
}

func TestRunCheckConfigFailure(t *testing.T) {
	useBufferWriters(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("MaxCacheSize = \"10XB\"\n"), 0o644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	code := run(cliOptions{configPath: path, checkOnly: true})
	if code == 0 {
		t.Fatalf("无效配置应返回非零退出码")
	}
}

func TestRunRequiresAction(t *testing.T) {
	useBufferWriters(t)
	cfgPath, _ := writeConfigFixture(t)
	code := run(cliOptions{configPath: cfgPath})
	if code != 2 {
		t.Fatalf("未指定操作应返回退出码 2，得到 %d", code)
	}
	if !strings.Contains(stdErrBuffer().String(), "请指定操作") {
		t.Fatalf("应提示可用操作，得到 %q", stdErrBuffer().String())
	}
}

func TestRunStatsEmptyCache(t *testing.T) {
	useBufferWriters(t)
	cfgPath, _ := writeConfigFixture(t)
	code := run(cliOptions{configPath: cfgPath, showStats: true})
	if code != 0 {
		t.Fatalf("stats 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "条目: 0") {
		t.Fatalf("空缓存应报告 0 个条目，得到 %q", stdOutBuffer().String())
	}
}

func TestRunClearRemovesEntries(t *testing.T) {
	useBufferWriters(t)
	cfgPath, cacheDir := writeConfigFixture(t)

	seed, err := cache.New(cache.Options{Directory: cacheDir})
	if err != nil {
		t.Fatalf("预置缓存失败: %v", err)
	}
	seed.Put("/seed.jpg", []byte("payload"))

	if code := run(cliOptions{configPath: cfgPath, clearCache: true}); code != 0 {
		t.Fatalf("clear 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "已清理 1 个条目") {
		t.Fatalf("clear 输出应报告清理数量，得到 %q", stdOutBuffer().String())
	}

	if st := seed.Stats(); st.Count != 0 {
		t.Fatalf("clear 后缓存应为空，得到 %d 个条目", st.Count)
	}
}
