package cache

import (
	"crypto/md5"
	"encoding/hex"
)

const (
	entryPrefix  = "embedding_"
	entrySuffix  = ".bin"
	tempSuffix   = ".tmp"
	metadataName = "metadata.json"

	// entryGlob 用于扫描目录时识别缓存条目，临时文件与 metadata.json 不会被匹配。
	entryGlob = entryPrefix + "*" + entrySuffix
)

// entryFilename 将逻辑键哈希为定长、文件系统安全的文件名。同一个键在任何
// 进程、任何时刻都映射到同一个文件，因此每个键至多只有一个条目文件。
func entryFilename(key string) string {
	sum := md5.Sum([]byte(key))
	return entryPrefix + hex.EncodeToString(sum[:]) + entrySuffix
}
