package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"GoalPulse/internal/recurrence"
	pkgerrors "GoalPulse/pkg/errors"
)

// CheckInStatus 打卡生命周期状态枚举
type CheckInStatus string

const (
	CheckInStatusScheduled CheckInStatus = "scheduled" // 已排期
	CheckInStatusPending   CheckInStatus = "pending"   // 外部 CRUD 写入，调度上等同 scheduled
	CheckInStatusCompleted CheckInStatus = "completed" // 已完成
	CheckInStatusMissed    CheckInStatus = "missed"    // 已错过
	CheckInStatusCancelled CheckInStatus = "cancelled" // 已取消，终态
)

// ReminderMethod 提醒通道枚举
type ReminderMethod string

const (
	ReminderMethodEmail ReminderMethod = "email"
	ReminderMethodPush  ReminderMethod = "push"
	ReminderMethodInApp ReminderMethod = "in-app"
)

// ReminderSettings 单个打卡的提醒策略，JSONB 存储
type ReminderSettings struct {
	Enabled            bool             `json:"enabled"`
	AdvanceTimeMinutes int              `json:"advance_time_minutes"`
	Methods            []ReminderMethod `json:"methods"`
}

// DefaultReminderSettings 系列生成时未指定提醒策略的缺省值
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		Enabled:            true,
		AdvanceTimeMinutes: 60,
		Methods:            []ReminderMethod{ReminderMethodEmail},
	}
}

func (r ReminderSettings) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *ReminderSettings) Scan(value interface{}) error {
	if value == nil {
		*r = ReminderSettings{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal reminder settings")
	}
	return json.Unmarshal(bytes, r)
}

// Assessment 完成打卡时附带的自评内容，调度引擎不解释其结构
type Assessment map[string]interface{}

func (a Assessment) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *Assessment) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal assessment payload")
	}
	return json.Unmarshal(bytes, a)
}

// CheckIn 一次目标自评打卡的排期实例
type CheckIn struct {
	BaseModel
	PublicID  int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	UserID    int64  `gorm:"not null;index:idx_check_ins_user_date_status" json:"user_id"`
	GoalID    int64  `gorm:"not null;index:idx_check_ins_goal" json:"goal_id"`
	JourneyID *int64 `gorm:"index" json:"journey_id,omitempty"`

	Frequency   recurrence.Frequency `gorm:"type:varchar(16);not null;default:'weekly'" json:"frequency"`
	CustomDays  int                  `gorm:"not null;default:0" json:"custom_days"`
	CustomHours int                  `gorm:"not null;default:0" json:"custom_hours"`

	ScheduledDate     time.Time  `gorm:"type:timestamptz;not null;index:idx_check_ins_user_date_status" json:"scheduled_date"`
	NextScheduledDate *time.Time `gorm:"type:timestamptz" json:"next_scheduled_date,omitempty"`
	IsRecurring       bool       `gorm:"not null;default:false" json:"is_recurring"`
	RecurrenceEndDate *time.Time `gorm:"type:timestamptz" json:"recurrence_end_date,omitempty"`

	Status        CheckInStatus `gorm:"type:varchar(16);not null;default:'scheduled';index:idx_check_ins_user_date_status" json:"status"`
	CompletedDate *time.Time    `gorm:"type:timestamptz" json:"completed_date,omitempty"`

	Reminder   ReminderSettings `gorm:"type:jsonb;not null" json:"reminder"`
	Assessment Assessment       `gorm:"type:jsonb" json:"assessment,omitempty"`
}

// TableName 指定表名
func (CheckIn) TableName() string {
	return "check_ins"
}

// Rule 返回该打卡的完整重复规则
func (c *CheckIn) Rule() recurrence.Rule {
	return recurrence.Rule{
		Frequency:   c.Frequency,
		CustomDays:  c.CustomDays,
		CustomHours: c.CustomHours,
	}
}

// IsDue 是否仍在待办状态（scheduled 和 pending 调度上等价）
func (c *CheckIn) IsDue() bool {
	return c.Status == CheckInStatusScheduled || c.Status == CheckInStatusPending
}

// IsOverdue 排期已过且仍待办
func (c *CheckIn) IsOverdue(now time.Time) bool {
	return c.IsDue() && c.ScheduledDate.Before(now)
}

// ReminderWindowOpen 当前时刻是否落在提醒窗口 [scheduledDate-advance, scheduledDate] 内
func (c *CheckIn) ReminderWindowOpen(now time.Time) bool {
	if !c.Reminder.Enabled {
		return false
	}
	opensAt := c.ScheduledDate.Add(-time.Duration(c.Reminder.AdvanceTimeMinutes) * time.Minute)
	return !now.Before(opensAt) && !now.After(c.ScheduledDate)
}

// Complete 完成打卡。仅 scheduled/pending 可完成；
// 下一次排期锚定在原 scheduledDate 上，与实际完成时间无关。
func (c *CheckIn) Complete(assessment Assessment, now time.Time) error {
	if c.Status == CheckInStatusCompleted {
		return pkgerrors.CheckInAlreadyCompleted
	}
	if c.Status == CheckInStatusCancelled {
		return pkgerrors.CheckInCancelled
	}
	if !c.IsDue() {
		return pkgerrors.CheckInAlreadyCompleted
	}

	c.Status = CheckInStatusCompleted
	completed := now
	c.CompletedDate = &completed

	if assessment != nil {
		if c.Assessment == nil {
			c.Assessment = Assessment{}
		}
		for k, v := range assessment {
			c.Assessment[k] = v
		}
	}

	c.advanceSeries()
	return nil
}

// Miss 标记错过。仅 scheduled/pending 可错过。
func (c *CheckIn) Miss() error {
	if c.Status == CheckInStatusCompleted {
		return pkgerrors.CheckInAlreadyCompleted
	}
	if c.Status == CheckInStatusCancelled {
		return pkgerrors.CheckInCancelled
	}
	if !c.IsDue() {
		// missed 重复标记是幂等的
		return nil
	}

	c.Status = CheckInStatusMissed
	c.advanceSeries()
	return nil
}

// Reschedule 改期并重置回 scheduled。completed 拒绝，其余状态均可改期。
func (c *CheckIn) Reschedule(newDate time.Time) error {
	if c.Status == CheckInStatusCompleted {
		return pkgerrors.CheckInCompleted
	}
	if c.Status == CheckInStatusCancelled {
		return pkgerrors.CheckInCancelled
	}

	c.ScheduledDate = newDate
	c.Status = CheckInStatusScheduled
	c.advanceSeries()
	return nil
}

// advanceSeries 计算 nextScheduledDate；系列结束后清空
func (c *CheckIn) advanceSeries() {
	if !c.IsRecurring {
		return
	}

	next := recurrence.Next(c.ScheduledDate, c.Rule())
	if c.RecurrenceEndDate != nil && next.After(*c.RecurrenceEndDate) {
		c.NextScheduledDate = nil
		return
	}
	c.NextScheduledDate = &next
}
