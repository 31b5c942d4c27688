package repository

import (
	"context"
	"time"

	"github.com/access-ci-org/Operations-Router-News/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityRepository 入库过程审计记录的读写
type ActivityRepository interface {
	Start(ctx context.Context, act *model.ProcessingActivity) error
	Finish(ctx context.Context, act *model.ProcessingActivity, succeeded bool, message string, stats datatypes.JSON) error
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Start 登记一轮处理的开始
func (r *activityRepository) Start(ctx context.Context, act *model.ProcessingActivity) error {
	if act.ID == "" {
		act.ID = uuid.NewString()
	}
	act.StartedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(act).Error
}

// Finish 回写本轮结果（成功与否、摘要、计数）
func (r *activityRepository) Finish(ctx context.Context, act *model.ProcessingActivity, succeeded bool, message string, stats datatypes.JSON) error {
	now := time.Now().UTC()
	act.FinishedAt = &now
	act.Succeeded = succeeded
	act.Message = message
	act.Stats = stats
	return r.db.WithContext(ctx).Model(act).Updates(map[string]interface{}{
		"finished_at": act.FinishedAt,
		"succeeded":   act.Succeeded,
		"message":     act.Message,
		"stats":       act.Stats,
	}).Error
}
