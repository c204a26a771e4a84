package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// metaIndex 维护 条目文件名 → 最近访问时间（Unix 秒，含小数） 的映射。
// 它只是淘汰排序的优化：缺失或损坏时回退到文件 ModTime，绝不致命。
type metaIndex map[string]float64

// touch 写入或刷新一条访问记录。
func (m metaIndex) touch(name string, ts float64) {
	m[name] = ts
}

// remove 删除一条访问记录，不存在时为 no-op。
func (m metaIndex) remove(name string) {
	delete(m, name)
}

// recency 返回条目的有效访问时间：索引记录优先，缺失时回退文件 ModTime。
func (m metaIndex) recency(name string, info fs.FileInfo) float64 {
	if ts, ok := m[name]; ok {
		return ts
	}
	return unixSeconds(info.ModTime())
}

// loadMetadata 读取持久化的索引文件。文件缺失、截断或格式不兼容都返回空
// 索引而非报错：元数据只是优化，损坏时缓存照常工作。
func loadMetadata(path string, log logrus.FieldLogger) metaIndex {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithFields(logrus.Fields{
				"action": "metadata_load",
				"path":   path,
			}).WithError(err).Debug("读取元数据失败，使用空索引")
		}
		return metaIndex{}
	}

	idx := metaIndex{}
	if err := json.Unmarshal(raw, &idx); err != nil {
		log.WithFields(logrus.Fields{
			"action": "metadata_load",
			"path":   path,
		}).WithError(err).Warn("元数据损坏，回退到文件修改时间排序")
		return metaIndex{}
	}
	return idx
}

// saveMetadata 整体重写索引文件。失败只记日志：内存中的索引在本进程内
// 仍然有效，下一次成功写入会重新建立持久化。
func saveMetadata(path string, idx metaIndex, log logrus.FieldLogger) {
	raw, err := json.Marshal(idx)
	if err == nil {
		err = os.WriteFile(path, raw, 0o644)
	}
	if err != nil {
		log.WithFields(logrus.Fields{
			"action": "metadata_save",
			"path":   path,
		}).WithError(err).Debug("写入元数据失败")
	}
}

// unixSeconds 返回浮点 Unix 秒，保留亚秒精度供淘汰排序使用。
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
