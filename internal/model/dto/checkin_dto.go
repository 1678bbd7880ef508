package dto

import "time"

// ========== CheckIn 相关 DTO ==========

// ReminderSettingsInput 提醒策略入参
type ReminderSettingsInput struct {
	Enabled            *bool    `json:"enabled,omitempty"`
	AdvanceTimeMinutes *int     `json:"advance_time_minutes,omitempty"`
	Methods            []string `json:"methods,omitempty"`
}

// CreateCheckInRequest 创建单次打卡
type CreateCheckInRequest struct {
	GoalID        int64                  `json:"goal_id"`
	JourneyID     *int64                 `json:"journey_id,omitempty"`
	Frequency     string                 `json:"frequency"`
	CustomDays    int                    `json:"custom_days,omitempty"`
	CustomHours   int                    `json:"custom_hours,omitempty"`
	ScheduledDate time.Time              `json:"scheduled_date"`
	IsRecurring   bool                   `json:"is_recurring"`
	EndDate       *time.Time             `json:"recurrence_end_date,omitempty"`
	Reminder      *ReminderSettingsInput `json:"reminder,omitempty"`
}

// CreateSeriesRequest 批量生成重复系列
type CreateSeriesRequest struct {
	GoalID      int64                  `json:"goal_id"`
	Frequency   string                 `json:"frequency"`
	CustomDays  int                    `json:"custom_days,omitempty"`
	CustomHours int                    `json:"custom_hours,omitempty"`
	StartDate   time.Time              `json:"start_date"`
	EndDate     *time.Time             `json:"end_date,omitempty"`
	Reminder    *ReminderSettingsInput `json:"reminder,omitempty"`
}

// CompleteCheckInRequest 完成打卡，自评内容对引擎透明
type CompleteCheckInRequest struct {
	Assessment map[string]interface{} `json:"assessment,omitempty"`
}

// RescheduleCheckInRequest 打卡改期
type RescheduleCheckInRequest struct {
	NewDate time.Time `json:"new_date"`
}

// CheckInItem 打卡列表项
type CheckInItem struct {
	ID                string     `json:"id"`
	GoalID            string     `json:"goal_id"`
	Frequency         string     `json:"frequency"`
	Status            string     `json:"status"`
	ScheduledDate     time.Time  `json:"scheduled_date"`
	NextScheduledDate *time.Time `json:"next_scheduled_date,omitempty"`
	CompletedDate     *time.Time `json:"completed_date,omitempty"`
	IsRecurring       bool       `json:"is_recurring"`
}

// CheckInRangeQuery 日期范围查询参数
type CheckInRangeQuery struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Limit int    `query:"limit"`
}
