package cache

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// evictTargetRatio 是淘汰后的目标水位：清到上限的 80% 而不是 100%，
// 避免下一次写入立即再次触发淘汰。
const evictTargetRatio = 0.8

type evictCandidate struct {
	path    string
	name    string
	size    int64
	recency float64
}

// enforceLimitLocked 扫描条目文件并在总量超限时按访问时间从旧到新删除，
// 直到降至目标水位。整个过程尽力而为：单个文件删除失败会被跳过，任何
// 错误都不会上抛。调用方必须持有 c.mu。
func (c *Cache) enforceLimitLocked() {
	matches, err := filepath.Glob(filepath.Join(c.dir, entryGlob))
	if err != nil {
		c.log.WithField("action", "evict").WithError(err).Debug("扫描缓存目录失败")
		return
	}

	var (
		files []evictCandidate
		total int64
	)
	present := make(map[string]struct{}, len(matches))
	for _, p := range matches {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		name := filepath.Base(p)
		present[name] = struct{}{}
		files = append(files, evictCandidate{
			path:    p,
			name:    name,
			size:    info.Size(),
			recency: c.meta.recency(name, info),
		})
		total += info.Size()
	}

	if total <= c.maxBytes {
		return
	}

	// 顺带清理有记录无文件的悬空元数据。
	for name := range c.meta {
		if _, ok := present[name]; !ok {
			c.meta.remove(name)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].recency < files[j].recency
	})

	target := float64(c.maxBytes) * evictTargetRatio
	var removed int64
	var victims int
	for _, f := range files {
		if float64(total-removed) <= target {
			break
		}
		if err := os.Remove(f.path); err != nil {
			c.log.WithFields(logrus.Fields{
				"action": "evict",
				"entry":  f.name,
			}).WithError(err).Debug("删除条目失败，跳过")
			continue
		}
		removed += f.size
		victims++
		c.meta.remove(f.name)
	}

	c.saveMetaLocked()

	c.log.WithFields(logrus.Fields{
		"action":        "evict",
		"removed":       victims,
		"removed_bytes": removed,
		"total_bytes":   total - removed,
		"max_bytes":     c.maxBytes,
	}).Info("缓存淘汰完成")
}
