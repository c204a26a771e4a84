package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"strings"
)

// 条目文件布局：4 字节 magic + 4 字节正文 CRC-32 + 8 字节正文长度 + 正文。
// 任一字段解码失败即视为条目损坏，由 Get 的自愈路径删除。
var entryMagic = []byte("EMBC")

const entryHeaderSize = 16

var errCorruptEntry = errors.New("corrupt cache entry")

// encodeEntry 为正文加上校验头，使截断或乱写的文件可以被识别为损坏。
func encodeEntry(payload []byte) []byte {
	buf := make([]byte, entryHeaderSize+len(payload))
	copy(buf[0:4], entryMagic)
	binary.BigEndian.PutUint32(buf[4:8], crc32.ChecksumIEEE(payload))
	binary.BigEndian.PutUint64(buf[8:16], uint64(len(payload)))
	copy(buf[entryHeaderSize:], payload)
	return buf
}

// decodeEntry 校验条目文件内容并返回正文；失败时返回 errCorruptEntry。
func decodeEntry(raw []byte) ([]byte, error) {
	if len(raw) < entryHeaderSize {
		return nil, fmt.Errorf("%w: short file (%d bytes)", errCorruptEntry, len(raw))
	}
	if !bytes.Equal(raw[0:4], entryMagic) {
		return nil, fmt.Errorf("%w: bad magic", errCorruptEntry)
	}
	length := binary.BigEndian.Uint64(raw[8:16])
	payload := raw[entryHeaderSize:]
	if uint64(len(payload)) != length {
		return nil, fmt.Errorf("%w: length mismatch", errCorruptEntry)
	}
	if crc32.ChecksumIEEE(payload) != binary.BigEndian.Uint32(raw[4:8]) {
		return nil, fmt.Errorf("%w: checksum mismatch", errCorruptEntry)
	}
	return payload, nil
}

// tempPath 由最终路径推导临时文件路径（embedding_<hash>.tmp），写入失败后
// 残留的临时文件因此可以被识别与清理。
func tempPath(path string) string {
	return strings.TrimSuffix(path, entrySuffix) + tempSuffix
}

// writeEntryFile 先写同目录临时文件再 rename 到最终路径，保证并发读者要么
// 看到旧的完整条目、要么看到新的完整条目。任何失败都会尽力删除临时文件，
// 且不会影响既有条目。
func writeEntryFile(path string, payload []byte) error {
	tmp := tempPath(path)

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, err = f.Write(encodeEntry(payload))
	if err == nil {
		err = f.Sync()
	}
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("promote temp file: %w", err)
	}
	return nil
}
