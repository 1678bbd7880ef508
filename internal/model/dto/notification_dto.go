package dto

import "time"

// ========== Notification 相关 DTO ==========

// InAppNotificationItem in-app 通知列表项
type InAppNotificationItem struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// NotificationSettingsRequest 收件设置更新入参，nil 字段不改动
type NotificationSettingsRequest struct {
	Email                 *string `json:"email,omitempty"`
	PushToken             *string `json:"push_token,omitempty"`
	WeeklySummaryEnabled  *bool   `json:"weekly_summary_enabled,omitempty"`
	MonthlySummaryEnabled *bool   `json:"monthly_summary_enabled,omitempty"`
}

// NotificationSettingsItem 收件设置视图，邮箱只回显是否已配置
type NotificationSettingsItem struct {
	EmailConfigured       bool   `json:"email_configured"`
	PushConfigured        bool   `json:"push_configured"`
	Timezone              string `json:"timezone"`
	WeeklySummaryEnabled  bool   `json:"weekly_summary_enabled"`
	MonthlySummaryEnabled bool   `json:"monthly_summary_enabled"`
}

// ========== Job 运维 DTO ==========

// JobStatusItem 调度任务状态
type JobStatusItem struct {
	Name      string     `json:"name"`
	Scheduled bool       `json:"scheduled"`
	Running   bool       `json:"running"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}
