package util

import (
	"encoding/base64"
	"time"

	"github.com/goccy/go-json"
)

// EncodeMessageCursor 将消息排序键 (createdAt, id) 编码为 Base64 不透明游标
func EncodeMessageCursor(createdAt time.Time, id uint64) string {
	b, _ := json.Marshal([]interface{}{createdAt.UTC().Format(time.RFC3339Nano), id})
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeMessageCursor 解码游标；任何非法输入都按"无游标"处理，不产生错误
func DecodeMessageCursor(cursor string) (time.Time, uint64, bool) {
	if cursor == "" {
		return time.Time{}, 0, false
	}
	b, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, 0, false
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil || len(parts) != 2 {
		return time.Time{}, 0, false
	}

	var tsStr string
	if err := json.Unmarshal(parts[0], &tsStr); err != nil {
		return time.Time{}, 0, false
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return time.Time{}, 0, false
	}

	var id uint64
	if err := json.Unmarshal(parts[1], &id); err != nil {
		return time.Time{}, 0, false
	}

	return ts, id, true
}
