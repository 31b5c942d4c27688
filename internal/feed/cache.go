package feed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/access-ci-org/Operations-Router-News/internal/model"
)

// WriteCache 将本轮原始记录序列化写入本地缓存文件；同一对象图两次写入字节一致。
// 返回写入的字节数。
func WriteCache(path string, records []model.OutageRecord) (int, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("序列化缓存失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("写缓存文件失败: %w", err)
	}
	return len(data), nil
}

// ReadCache 读取并解析本地缓存文件；解析失败视为致命错误由调用方处理
func ReadCache(path string) ([]model.OutageRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读缓存文件失败: %w", err)
	}
	var records []model.OutageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("解析缓存文件 %s 失败: %w", path, err)
	}
	return records, nil
}
