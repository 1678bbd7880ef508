package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// NotificationKind 通知类别枚举
type NotificationKind string

const (
	NotificationKindReminder   NotificationKind = "checkin_reminder"   // 打卡提醒
	NotificationKindOverdue    NotificationKind = "checkin_overdue"    // 逾期告警
	NotificationKindCompletion NotificationKind = "checkin_completion" // 完成回执
	NotificationKindSummary    NotificationKind = "period_summary"     // 周报/月报
)

// NotificationChannel 通知通道枚举
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelPush  NotificationChannel = "push"
	NotificationChannelInApp NotificationChannel = "in-app"
)

// NotificationTaskStatus 通知任务状态枚举
type NotificationTaskStatus string

const (
	NotificationTaskStatusPending    NotificationTaskStatus = "pending"    // 待处理
	NotificationTaskStatusProcessing NotificationTaskStatus = "processing" // 处理中
	NotificationTaskStatusSuccess    NotificationTaskStatus = "success"    // 成功
	NotificationTaskStatusFailed     NotificationTaskStatus = "failed"     // 失败
)

// NotificationTask 异步通道（email/push）的投递任务。
// 引擎正确性不依赖这张表，丢失只影响运维可见性。
type NotificationTask struct {
	BaseModel
	TaskCode    int64                  `gorm:"uniqueIndex;not null" json:"task_code"`
	UserID      int64                  `gorm:"not null;index:idx_notification_tasks_user" json:"user_id"`
	CheckInID   *int64                 `gorm:"index" json:"check_in_id,omitempty"`
	Kind        NotificationKind       `gorm:"type:varchar(32);not null" json:"kind"`
	Channel     NotificationChannel    `gorm:"type:varchar(16);not null" json:"channel"`
	Payload     JSONB                  `gorm:"type:jsonb;not null" json:"payload"`
	Status      NotificationTaskStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_notification_tasks_status" json:"status"`
	RetryCount  int                    `gorm:"type:smallint;not null;default:0" json:"retry_count"`
	ScheduledAt time.Time              `gorm:"type:timestamptz;not null;index:idx_notification_tasks_status" json:"scheduled_at"`
	ProcessedAt *time.Time             `gorm:"type:timestamptz" json:"processed_at,omitempty"`
	LastError   *string                `gorm:"type:varchar(255)" json:"last_error,omitempty"`
}

// TableName 指定表名
func (NotificationTask) TableName() string {
	return "notification_tasks"
}

// InAppNotification in-app 通道的落库通知，API 拉取未读列表用
type InAppNotification struct {
	BaseModel
	UserID    int64            `gorm:"not null;index:idx_in_app_notifications_user" json:"user_id"`
	CheckInID *int64           `gorm:"index" json:"check_in_id,omitempty"`
	Kind      NotificationKind `gorm:"type:varchar(32);not null" json:"kind"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	ReadAt    *time.Time       `gorm:"type:timestamptz" json:"read_at,omitempty"`
}

// TableName 指定表名
func (InAppNotification) TableName() string {
	return "in_app_notifications"
}

// JSONB 自定义 JSONB 类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value")
	}
	return json.Unmarshal(bytes, j)
}
