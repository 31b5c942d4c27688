package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/access-ci-org/Operations-Router-News/internal/config"
	"github.com/access-ci-org/Operations-Router-News/internal/model"
	"github.com/access-ci-org/Operations-Router-News/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Fetcher 从上游 outages API 拉取原始记录
type Fetcher struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewFetcher(cfg *config.Config, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		httpClient: httpclient.New(cfg.Sync.Timeout, cfg.Sync.Proxy, logger),
		logger:     logger,
	}
}

// Fetch 拉取并解析 outages 列表。
// 网络错误返回 error 由调用方按"本轮无数据"处理；响应不是 JSON 时直接返回 (nil, nil)，
// 两种情况都不致命，下一轮重试。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]model.OutageRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	f.logger.Debugf("HTTP GET  %s", rawURL)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求上游失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	f.logger.Debugf("HTTP RESP %d %s (returned %d/bytes)", resp.StatusCode, resp.Status, len(body))

	var records []model.OutageRecord
	if err := json.Unmarshal(body, &records); err != nil {
		f.logger.WithError(err).Error("响应不是预期的 JSON 格式")
		return nil, nil
	}
	return records, nil
}
