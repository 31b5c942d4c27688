package repository

import (
	"context"

	"github.com/access-ci-org/Operations-Router-News/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsRepository news 仓库读写接口；对账服务只依赖这一层，便于用假实现测试
type NewsRepository interface {
	// 快照读取：按输出命名空间前缀取当前全量
	ListNewsByPrefix(ctx context.Context, prefix string) ([]*model.News, error)
	ListAssociationsByPrefix(ctx context.Context, prefix string) ([]*model.NewsAssociation, error)
	// 逐条写入：upsert 为全字段覆盖，不做局部更新
	UpsertNews(ctx context.Context, item *model.News) error
	CreateAssociation(ctx context.Context, assoc *model.NewsAssociation) error
	DeleteAssociation(ctx context.Context, assoc *model.NewsAssociation) error
	DeleteNews(ctx context.Context, urn string) error
	// 查询辅助
	GetNews(ctx context.Context, urn string) (*model.News, error)
	ListAssociationsByURN(ctx context.Context, urn string) ([]*model.NewsAssociation, error)
	GetPublisher(ctx context.Context, organizationID string) (*model.NewsPublisher, error)
}

type newsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) ListNewsByPrefix(ctx context.Context, prefix string) ([]*model.News, error) {
	var items []*model.News
	if err := r.db.WithContext(ctx).Where("urn LIKE ?", prefix+"%").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *newsRepository) ListAssociationsByPrefix(ctx context.Context, prefix string) ([]*model.NewsAssociation, error) {
	var assocs []*model.NewsAssociation
	if err := r.db.WithContext(ctx).Where("news_urn LIKE ?", prefix+"%").Find(&assocs).Error; err != nil {
		return nil, err
	}
	return assocs, nil
}

// UpsertNews URN 冲突时全字段覆盖（last write wins），不存在则创建
func (r *newsRepository) UpsertNews(ctx context.Context, item *model.News) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "urn"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"news_type", "subject", "content", "news_start", "news_end",
			"web_url", "distribution_options", "affiliation", "publisher_id", "updated_at",
		}),
	}).Create(item).Error
}

func (r *newsRepository) CreateAssociation(ctx context.Context, assoc *model.NewsAssociation) error {
	return r.db.WithContext(ctx).Create(assoc).Error
}

func (r *newsRepository) DeleteAssociation(ctx context.Context, assoc *model.NewsAssociation) error {
	return r.db.WithContext(ctx).
		Where("news_urn = ? AND associated_type = ? AND associated_id = ?",
			assoc.NewsURN, assoc.AssociatedType, assoc.AssociatedID).
		Delete(&model.NewsAssociation{}).Error
}

func (r *newsRepository) DeleteNews(ctx context.Context, urn string) error {
	return r.db.WithContext(ctx).Where("urn = ?", urn).Delete(&model.News{}).Error
}

func (r *newsRepository) GetNews(ctx context.Context, urn string) (*model.News, error) {
	var item model.News
	if err := r.db.WithContext(ctx).Where("urn = ?", urn).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *newsRepository) ListAssociationsByURN(ctx context.Context, urn string) ([]*model.NewsAssociation, error) {
	var assocs []*model.NewsAssociation
	if err := r.db.WithContext(ctx).Where("news_urn = ?", urn).Find(&assocs).Error; err != nil {
		return nil, err
	}
	return assocs, nil
}

func (r *newsRepository) GetPublisher(ctx context.Context, organizationID string) (*model.NewsPublisher, error) {
	var pub model.NewsPublisher
	if err := r.db.WithContext(ctx).Where("organization_id = ?", organizationID).First(&pub).Error; err != nil {
		return nil, err
	}
	return &pub, nil
}
