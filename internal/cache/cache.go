package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultMaxBytes 是未配置时的软上限（50 GiB），对应嵌入缓存的典型体量。
const DefaultMaxBytes int64 = 50 << 30

const defaultDirName = "embedcache"

// DefaultDirectory 返回默认缓存目录。所有需要这个路径的地方（配置默认值、
// CLI）都从这里取，目录只在此处定义一次。
func DefaultDirectory() string {
	return filepath.Join(os.TempDir(), defaultDirName)
}

// Options 控制 New 的行为，零值字段回退到默认值。
type Options struct {
	// Directory 是条目文件与 metadata.json 的根目录，空值使用 DefaultDirectory。
	Directory string
	// MaxBytes 是淘汰策略维护的软上限，非正值使用 DefaultMaxBytes。
	MaxBytes int64
	// Logger 接收被吞掉的内部错误的诊断日志，nil 时使用 logrus 标准实例。
	Logger logrus.FieldLogger
}

// Stats 汇总当前条目数与占用字节数，供调用方展示。
type Stats struct {
	Count      int
	TotalBytes int64
	Directory  string
}

// Cache 是持久化嵌入缓存的门面。五个公开操作在同一把互斥锁下串行执行，
// 内存索引与磁盘状态因此不会观察到撕裂更新；换来的代价是不同键之间
// 没有并行度，对写入量低、单值昂贵的嵌入缓存是合算的取舍。
type Cache struct {
	dir      string
	maxBytes int64
	log      logrus.FieldLogger

	mu   sync.Mutex
	meta metaIndex
	now  func() time.Time
}

// New 创建（或打开）一个缓存目录并加载元数据索引。这是唯一可能失败的
// 入口：目录无法建立时缓存不可用，其余操作永不返回错误。
func New(opts Options) (*Cache, error) {
	dir := opts.Directory
	if dir == "" {
		dir = DefaultDirectory()
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	c := &Cache{
		dir:      abs,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
	c.meta = loadMetadata(c.metadataPath(), log)
	return c, nil
}

// Directory 返回缓存根目录的绝对路径。
func (c *Cache) Directory() string {
	return c.dir
}

// Get 读取键对应的条目。未命中返回 (nil, false)；命中会刷新访问时间。
// 条目损坏时走自愈路径：删除文件与元数据记录后按未命中返回，下一次
// Put 会重建条目。
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := entryFilename(key)
	path := filepath.Join(c.dir, name)

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.log.WithFields(logrus.Fields{
				"action": "get",
				"entry":  name,
			}).WithError(err).Debug("读取条目失败，按未命中处理")
		}
		return nil, false
	}

	payload, err := decodeEntry(raw)
	if err != nil {
		c.dropCorruptLocked(name, path, err)
		return nil, false
	}

	c.meta.touch(name, unixSeconds(c.now()))
	c.saveMetaLocked()
	return payload, true
}

// Put 原子地写入条目并刷新访问时间，随后执行一轮淘汰。写入失败只记
// 日志：同键既有条目保持原样，调用方不受影响。
func (c *Cache) Put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := entryFilename(key)
	path := filepath.Join(c.dir, name)

	if err := writeEntryFile(path, value); err != nil {
		c.log.WithFields(logrus.Fields{
			"action": "put",
			"entry":  name,
		}).WithError(err).Warn("写入条目失败")
		return
	}

	c.meta.touch(name, unixSeconds(c.now()))
	c.saveMetaLocked()
	c.enforceLimitLocked()
}

// Find 只探测条目文件是否存在，不读取内容、不刷新访问时间。调用方用它
// 决定是否需要计算一个值。
func (c *Cache) Find(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(filepath.Join(c.dir, entryFilename(key)))
	return err == nil && !info.IsDir()
}

// Clear 删除全部条目文件并重置元数据索引。单个文件删除失败会被跳过。
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(c.dir, entryGlob))
	if err != nil {
		c.log.WithField("action", "clear").WithError(err).Debug("扫描缓存目录失败")
		matches = nil
	}
	for _, p := range matches {
		if err := os.Remove(p); err != nil {
			c.log.WithFields(logrus.Fields{
				"action": "clear",
				"entry":  filepath.Base(p),
			}).WithError(err).Debug("删除条目失败，跳过")
		}
	}

	c.meta = metaIndex{}
	c.saveMetaLocked()
}

// Stats 枚举条目文件并统计数量与总字节数。枚举失败时返回零值统计而非
// 错误。
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Stats{Directory: c.dir}
	matches, err := filepath.Glob(filepath.Join(c.dir, entryGlob))
	if err != nil {
		c.log.WithField("action", "stats").WithError(err).Debug("扫描缓存目录失败")
		return st
	}
	for _, p := range matches {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		st.Count++
		st.TotalBytes += info.Size()
	}
	return st
}

// dropCorruptLocked 删除损坏条目及其元数据记录，让损坏状态随本次 Get 消失。
func (c *Cache) dropCorruptLocked(name, path string, cause error) {
	c.log.WithFields(logrus.Fields{
		"action": "get",
		"entry":  name,
	}).WithError(cause).Warn("条目损坏，删除后按未命中处理")

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.log.WithFields(logrus.Fields{
			"action": "get",
			"entry":  name,
		}).WithError(err).Debug("删除损坏条目失败")
	}
	c.meta.remove(name)
	c.saveMetaLocked()
}

func (c *Cache) saveMetaLocked() {
	saveMetadata(c.metadataPath(), c.meta, c.log)
}

func (c *Cache) metadataPath() string {
	return filepath.Join(c.dir, metadataName)
}
