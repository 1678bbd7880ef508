package model

import "time"

// GoalStatus 目标状态枚举
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusArchived  GoalStatus = "archived"
)

// Goal 用户长期目标。目标的 CRUD 与进度汇总属于外部模块，
// 调度引擎只依赖存在性检查和标题兜底。
type Goal struct {
	BaseModel
	PublicID    int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	UserID      int64      `gorm:"not null;index:idx_goals_user" json:"user_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Status      GoalStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_goals_user" json:"status"`
	TargetDate  *time.Time `gorm:"type:timestamptz" json:"target_date,omitempty"`
}

// TableName 指定表名
func (Goal) TableName() string {
	return "goals"
}
