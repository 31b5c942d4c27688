package service

import (
	"context"
	"fmt"

	"github.com/access-ci-org/Operations-Router-News/internal/config"
	"github.com/access-ci-org/Operations-Router-News/internal/model"
	"github.com/access-ci-org/Operations-Router-News/internal/repository"

	"github.com/sirupsen/logrus"
)

// Stats 一轮处理的计数汇总
type Stats struct {
	Updated int `json:"updated"` // 每次 news upsert 计一次
	Deleted int `json:"deleted"` // 每次 news 删除计一次
	Skipped int `json:"skipped"` // 预留，当前没有代码路径会增加它
}

// WarehouseService 合并批次与 news 仓库之间的对账落库
type WarehouseService struct {
	repo      repository.NewsRepository
	publisher *model.NewsPublisher
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewWarehouseService(repo repository.NewsRepository, publisher *model.NewsPublisher, cfg *config.Config, logger *logrus.Logger) *WarehouseService {
	return &WarehouseService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Reconcile 将合并批次对账进仓库，使仓库收敛到与本轮批次完全一致：
//  1. 逐个 upsert 本轮出现的 news（全字段覆盖）；任一写入失败立即中止整轮，
//     宁可整轮失败也不留下部分提交的交叉引用；
//  2. 逐个保证关联存在：快照里已有的原样保留不重写，没有的新建；失败同样中止整轮；
//  3. 删除快照中存在而本轮未出现的关联与 news；删除失败只记日志，
//     残留行下一轮成功后自愈。
//
// 返回 (是否成功, 失败信息, 计数)。重复执行同一批次幂等：内容不变、不产生删除。
func (s *WarehouseService) Reconcile(ctx context.Context, merged map[string]*model.MergedOutage) (bool, string, *Stats) {
	stats := &Stats{}
	prefix := s.cfg.Publisher.NewsURNPrefix

	// 1. 读取当前快照（本轮开始时一次性读取）
	curNews, err := s.repo.ListNewsByPrefix(ctx, prefix)
	if err != nil {
		msg := fmt.Sprintf("读取 news 快照失败: %v", err)
		s.logger.Error(msg)
		return false, msg, stats
	}
	cur := make(map[string]*model.News, len(curNews))
	for _, item := range curNews {
		cur[item.URN] = item
	}

	curAssocList, err := s.repo.ListAssociationsByPrefix(ctx, prefix)
	if err != nil {
		msg := fmt.Sprintf("读取关联快照失败: %v", err)
		s.logger.Error(msg)
		return false, msg, stats
	}
	curAssoc := make(map[string]*model.NewsAssociation, len(curAssocList))
	for _, assoc := range curAssocList {
		curAssoc[assoc.Key()] = assoc
	}

	// 本轮观测集合，轮末用于集合差删除
	newSeen := make(map[string]*model.News, len(merged))
	newAssoc := make(map[string]*model.NewsAssociation)

	// 2. upsert 本轮全部 news 及其关联
	for urn, m := range merged {
		item := &model.News{
			URN:       urn,
			NewsType:  MapOutageType(m.OutageType),
			Subject:   m.Subject,
			Content:   m.Content,
			NewsStart: parseFeedTime(m.OutageStart),
			NewsEnd:   parseFeedTime(m.OutageEnd),
			// WebURL 是展示字段，每次写入都由 URN 重算，不是独立状态
			WebURL:              fmt.Sprintf("%s/id/%s/?format=html", s.cfg.Publisher.WebURLBase, urn),
			DistributionOptions: nil,
			Affiliation:         s.cfg.Publisher.Affiliation,
			PublisherID:         s.publisher.OrganizationID,
		}
		if err := s.repo.UpsertNews(ctx, item); err != nil {
			msg := fmt.Sprintf("保存 News URN=%s 失败: %v", urn, err)
			s.logger.Error(msg)
			return false, msg, stats
		}
		newSeen[urn] = item
		stats.Updated++
		s.logger.Debugf("News URN=%s", urn)

		for _, resource := range m.AffectedResources {
			key := AssociationKey(urn, model.AssociatedTypeResource, resource)
			if existing, ok := curAssoc[key]; ok {
				// 已存在的关联原样带入观测集合，不产生写入
				newAssoc[key] = existing
				continue
			}
			if _, ok := newAssoc[key]; ok {
				// 同一轮内重复出现的资源只建一条关联
				continue
			}
			assoc := &model.NewsAssociation{
				NewsURN:        urn,
				AssociatedType: model.AssociatedTypeResource,
				AssociatedID:   resource,
			}
			if err := s.repo.CreateAssociation(ctx, assoc); err != nil {
				msg := fmt.Sprintf("保存关联 KEY=%s 失败: %v", key, err)
				s.logger.Error(msg)
				return false, msg, stats
			}
			newAssoc[key] = assoc
			s.logger.Debugf("Assoc KEY=%s", key)
		}
	}

	// 3. 删除本轮未出现的旧关联（尽力而为，失败不中止）
	for key, assoc := range curAssoc {
		if _, ok := newAssoc[key]; ok {
			continue
		}
		if err := s.repo.DeleteAssociation(ctx, assoc); err != nil {
			s.logger.WithError(err).Errorf("删除关联 KEY=%s 失败", key)
			continue
		}
		s.logger.Infof("已删除关联 KEY=%s", key)
	}

	// 4. 删除本轮未出现的旧 news；其关联在第3步已按集合差一并清掉
	for urn := range cur {
		if _, ok := newSeen[urn]; ok {
			continue
		}
		if err := s.repo.DeleteNews(ctx, urn); err != nil {
			s.logger.WithError(err).Errorf("删除 News URN=%s 失败", urn)
			continue
		}
		stats.Deleted++
		s.logger.Infof("已删除 News URN=%s", urn)
	}

	return true, "", stats
}
