package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProcessingActivity 一次 warehouse 入库过程的审计记录（每轮一条）
type ProcessingActivity struct {
	ID          string         `gorm:"column:id;primaryKey;type:varchar(64);comment:本轮运行UUID"`
	Application string         `gorm:"column:application;type:varchar(64);not null;comment:应用名"`
	Function    string         `gorm:"column:function;type:varchar(64);not null;comment:处理函数"`
	Topic       string         `gorm:"column:topic;type:varchar(64);comment:处理主题"`
	About       string         `gorm:"column:about;type:varchar(64);comment:处理对象（机构）"`
	StartedAt   time.Time      `gorm:"column:started_at;type:timestamp;not null;comment:开始时间"`
	FinishedAt  *time.Time     `gorm:"column:finished_at;type:timestamp;comment:结束时间"`
	Succeeded   bool           `gorm:"column:succeeded;type:boolean;default:false;comment:是否成功"`
	Message     string         `gorm:"column:message;type:text;comment:结果摘要或错误信息"`
	Stats       datatypes.JSON `gorm:"column:stats;type:jsonb;comment:计数汇总"`
}

func (ProcessingActivity) TableName() string { return "processing_activities" }
