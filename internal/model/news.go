package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// AssociatedTypeResource 本管道只产出资源类关联
const AssociatedTypeResource = "Resource"

// News 新闻主表（一条 = 一个合并后的逻辑 outage）
// URN 即业务主键，由 NewsURNPrefix + 上游 OutageID 确定性拼接，用于 upsert 匹配
type News struct {
	URN                 string          `gorm:"column:urn;primaryKey;type:varchar(128);comment:全局唯一URN"`
	NewsType            string          `gorm:"column:news_type;type:varchar(32);not null;comment:类型：Reconfiguration/Outage Partial/Outage Full"`
	Subject             string          `gorm:"column:subject;type:varchar(256);not null;comment:标题"`
	Content             string          `gorm:"column:content;type:text;comment:正文"`
	NewsStart           *time.Time      `gorm:"column:news_start;type:timestamp;comment:生效开始时间"`
	NewsEnd             *time.Time      `gorm:"column:news_end;type:timestamp;comment:生效结束时间，可为空"`
	WebURL              string          `gorm:"column:web_url;type:varchar(256);comment:展示页URL，每次写入时由URN重算"`
	DistributionOptions *datatypes.JSON `gorm:"column:distribution_options;type:jsonb;comment:分发选项，当前恒为空"`
	Affiliation         string          `gorm:"column:affiliation;type:varchar(64);comment:所属机构"`
	PublisherID         string          `gorm:"column:publisher_id;type:varchar(64);not null;index;comment:发布方ID"`
	CreatedAt           time.Time       `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (News) TableName() string { return "news" }

// NewsAssociation 新闻与资源的多对多关联
// (news_urn, associated_type, associated_id) 联合唯一，已存在的关联原样保留不重写
type NewsAssociation struct {
	ID             uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	NewsURN        string `gorm:"column:news_urn;type:varchar(128);not null;uniqueIndex:uq_news_assoc;comment:所属News URN"`
	AssociatedType string `gorm:"column:associated_type;type:varchar(32);not null;uniqueIndex:uq_news_assoc;comment:关联类型"`
	AssociatedID   string `gorm:"column:associated_id;type:varchar(128);not null;uniqueIndex:uq_news_assoc;comment:关联对象ID"`
}

func (NewsAssociation) TableName() string { return "news_associations" }

// Key 关联唯一键，快照侧与本轮观测侧必须逐字符一致，集合比较才成立
func (a *NewsAssociation) Key() string {
	return fmt.Sprintf("%s->%s/%s", a.NewsURN, a.AssociatedType, a.AssociatedID)
}

// NewsPublisher 已注册的发布方；ORGANIZATIONID 必须能在此表中查到，否则启动失败
type NewsPublisher struct {
	OrganizationID   string    `gorm:"column:organization_id;primaryKey;type:varchar(64);comment:组织ID"`
	OrganizationName string    `gorm:"column:organization_name;type:varchar(128);not null;comment:组织名称"`
	NewsURNPrefix    string    `gorm:"column:news_urn_prefix;type:varchar(128);comment:该发布方的URN前缀，非空时覆盖配置"`
	CreatedAt        time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt        time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (NewsPublisher) TableName() string { return "news_publishers" }
