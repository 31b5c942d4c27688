package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/access-ci-org/Operations-Router-News/internal/config"
	"github.com/access-ci-org/Operations-Router-News/internal/feed"
	"github.com/access-ci-org/Operations-Router-News/internal/model"
	"github.com/access-ci-org/Operations-Router-News/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	activityApplication = "route_xsede_outages"
	activityFunction    = "Reconcile"
	activityTopic       = "Infrastructure News"
)

// SyncService 一轮 拉取→合并→对账 的编排。
// 互斥锁保证任一时刻只有一轮在跑（调度器到点与手动触发可能并发）。
type SyncService struct {
	mu           sync.Mutex
	cfg          *config.Config
	fetcher      *feed.Fetcher
	warehouse    *WarehouseService
	analyze      *AnalyzeService
	activityRepo repository.ActivityRepository
	logger       *logrus.Logger
}

func NewSyncService(
	cfg *config.Config,
	fetcher *feed.Fetcher,
	warehouse *WarehouseService,
	analyze *AnalyzeService,
	activityRepo repository.ActivityRepository,
	logger *logrus.Logger,
) *SyncService {
	return &SyncService{
		cfg:          cfg,
		fetcher:      fetcher,
		warehouse:    warehouse,
		analyze:      analyze,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// RunOnce 执行一轮同步。
// 拉取失败或本轮无数据时跳过后续处理并返回 nil（下一轮重试）；
// 读缓存文件失败、写缓存文件失败、warehouse 对账失败返回 error，由调用方决定进程去留。
func (s *SyncService) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	stats := &Stats{}

	// 1. 读源
	records, err := s.readSource(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		s.logger.Info("本轮无源数据，跳过处理")
		return nil
	}

	// 2. 按目标分发
	dest := s.cfg.DestinationEndpoint()
	var runErr error
	switch dest.Scheme {
	case "file":
		n, err := feed.WriteCache(dest.Path, records)
		if err != nil {
			return err
		}
		s.logger.Infof("已序列化 %d 字节写入 file=%s", n, dest.Path)
	case "analyze":
		s.analyze.Run(records, stats)
	case "warehouse":
		runErr = s.runWarehouse(ctx, records, stats, start)
	}

	s.logger.Infof("Processed in %.3f/seconds: %d/updates, %d/deletes, %d/skipped",
		time.Since(start).Seconds(), stats.Updated, stats.Deleted, stats.Skipped)
	return runErr
}

// readSource 按配置从缓存文件或上游 API 读取原始记录
func (s *SyncService) readSource(ctx context.Context) ([]model.OutageRecord, error) {
	src := s.cfg.SourceEndpoint()
	if src.Scheme == "file" {
		records, err := feed.ReadCache(src.Path)
		if err != nil {
			return nil, err
		}
		s.logger.Infof("已读取缓存文件 file=%s，共 %d 条记录", src.Path, len(records))
		return records, nil
	}

	records, err := s.fetcher.Fetch(ctx, src.URI)
	if err != nil {
		// 网络类失败按"本轮无数据"处理，下一轮重试
		s.logger.WithError(err).Error("拉取上游 outages 失败，本轮跳过")
		return nil, nil
	}
	return records, nil
}

// runWarehouse 合并批次并对账入库，全程挂在一条 ProcessingActivity 审计记录上
func (s *SyncService) runWarehouse(ctx context.Context, records []model.OutageRecord, stats *Stats, start time.Time) error {
	act := &model.ProcessingActivity{
		Application: activityApplication,
		Function:    activityFunction,
		Topic:       activityTopic,
		About:       s.cfg.Publisher.Affiliation,
	}
	if err := s.activityRepo.Start(ctx, act); err != nil {
		s.logger.WithError(err).Warn("登记 ProcessingActivity 失败")
	}

	merged := MergeOutages(records, s.cfg.Publisher.InputURNPrefix, s.cfg.Publisher.NewsURNPrefix)
	ok, msg, wstats := s.warehouse.Reconcile(ctx, merged)
	*stats = *wstats

	summary := fmt.Sprintf("Processed in %.3f/seconds: %d/updates, %d/deletes, %d/skipped",
		time.Since(start).Seconds(), stats.Updated, stats.Deleted, stats.Skipped)
	finishMsg := summary
	if !ok {
		finishMsg = msg
	}
	statsJSON, _ := json.Marshal(wstats)
	if err := s.activityRepo.Finish(ctx, act, ok, finishMsg, statsJSON); err != nil {
		s.logger.WithError(err).Warn("回写 ProcessingActivity 失败")
	}

	if !ok {
		return errors.New(msg)
	}
	return nil
}
