package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/access-ci-org/Operations-Router-News/internal/config"

	"github.com/sirupsen/logrus"
)

// 业务高峰时段：本地时区 6 点至 21 点（含两端）
const (
	peakStartHour = 6
	peakEndHour   = 21
)

// Runner 一轮同步的执行体（service.SyncService 满足该接口）
type Runner interface {
	RunOnce(ctx context.Context) error
}

// Scheduler 轮询调度器：拉取→合并→入库→休眠 的循环。
// 整个流程单线程顺序执行，对账正确性依赖一次只观测一份快照。
type Scheduler struct {
	cfg    *config.Config
	runner Runner
	clock  Clock
	loc    *time.Location
	logger *logrus.Logger
}

func New(cfg *config.Config, runner Runner, clock Clock, logger *logrus.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Sync.Timezone)
	if err != nil {
		return nil, fmt.Errorf("加载时区 %s 失败: %w", cfg.Sync.Timezone, err)
	}
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		clock:  clock,
		loc:    loc,
		logger: logger,
	}, nil
}

// Run 循环执行同步。once 模式只跑一轮并把该轮错误原样返回；
// 守护模式下单轮失败只记日志，等下一轮重试，进程不退出。
// 注意：cfg.Sync.MaxStale 目前只声明不消费，强制刷新是否需要待产品确认。
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.runner.RunOnce(ctx); err != nil {
			if s.cfg.Sync.Once {
				return err
			}
			s.logger.WithError(err).Error("本轮同步失败，等待下一轮")
		}
		if s.cfg.Sync.Once {
			return nil
		}

		d := s.SleepInterval(s.clock.Now())
		s.logger.Debugf("sleep(%s)", d)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(d):
		}
	}
}

// SleepInterval 按固定时区的当前小时选取轮询间隔：
// 高峰时段用 peak_sleep，其余时段用 offpeak_sleep。间隔是配置值，不随负载变化。
func (s *Scheduler) SleepInterval(now time.Time) time.Duration {
	hour := now.In(s.loc).Hour()
	if hour >= peakStartHour && hour <= peakEndHour {
		return s.cfg.Sync.PeakSleep
	}
	return s.cfg.Sync.OffpeakSleep
}
