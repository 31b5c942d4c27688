package service

import (
	"github.com/access-ci-org/Operations-Router-News/internal/model"

	"github.com/sirupsen/logrus"
)

// AnalyzeService destination=analyze 时只做源数据巡检：逐条打点，不落库
type AnalyzeService struct {
	logger *logrus.Logger
}

func NewAnalyzeService(logger *logrus.Logger) *AnalyzeService {
	return &AnalyzeService{logger: logger}
}

// Run 逐条记录源数据概况，每条计入 Updated
func (s *AnalyzeService) Run(records []model.OutageRecord, stats *Stats) {
	for _, rec := range records {
		stats.Updated++
		s.logger.Infof("Item=%s, Resource=%s, OutageType=%s, OutageStart=%q",
			rec.OutageID, rec.ResourceID, rec.OutageType, rec.OutageStart)
	}
}
