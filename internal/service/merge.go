package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/access-ci-org/Operations-Router-News/internal/model"
)

// BuildNewsURN 由输出命名空间前缀与上游 OutageID 拼出新闻 URN；上游 OutageID 唯一，拼接即全局唯一
func BuildNewsURN(newsPrefix, outageID string) string {
	return newsPrefix + outageID
}

// AssociationKey 关联唯一键，与 model.NewsAssociation.Key 的格式逐字符一致
func AssociationKey(urn, assocType, assocID string) string {
	return fmt.Sprintf("%s->%s/%s", urn, assocType, assocID)
}

// MapOutageType 上游 OutageType → 目标 NewsType。
// 未知/新增类型一律按 Outage Full 处理，不丢弃也不报错。
func MapOutageType(outageType string) string {
	switch outageType {
	case model.OutageTypeReconfiguration:
		return model.NewsTypeReconfiguration
	case model.OutageTypePartial:
		return model.NewsTypeOutagePartial
	default:
		return model.NewsTypeOutageFull
	}
}

// MergeOutages 将同一 OutageID 的多条资源记录合并为一条逻辑 outage。
// 只处理 ID 带 inputPrefix 的存量记录（新命名空间的记录由其他管道负责，跳过避免重复入库）。
// 标量字段取组内首条（first-seen wins），AffectedResources 按出现顺序累积、不去重。
// 纯函数：相同输入顺序产出完全相同的结果。空批次返回空映射。
func MergeOutages(records []model.OutageRecord, inputPrefix, newsPrefix string) map[string]*model.MergedOutage {
	merged := make(map[string]*model.MergedOutage)
	for _, rec := range records {
		if !strings.HasPrefix(rec.ID, inputPrefix) {
			continue
		}
		urn := BuildNewsURN(newsPrefix, rec.OutageID)
		m, ok := merged[urn]
		if !ok {
			m = &model.MergedOutage{
				URN:         urn,
				OutageType:  rec.OutageType,
				Subject:     rec.Subject,
				Content:     rec.Content,
				OutageStart: rec.OutageStart,
				OutageEnd:   rec.OutageEnd,
			}
			merged[urn] = m
		}
		m.AffectedResources = append(m.AffectedResources, rec.ResourceID)
	}
	return merged
}

// feedTimeLayouts 上游时间格式的若干变体（ISO-8601 为主）
var feedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseFeedTime 解析上游时间字符串；空串或无法解析返回 nil
func parseFeedTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
