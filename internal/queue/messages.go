package queue

// NotificationTaskMessage 投递任务消息，scheduler/api 投递，worker 消费
type NotificationTaskMessage struct {
	Payload     map[string]interface{} `json:"payload"`
	MessageID   string                 `json:"message_id"`
	Kind        string                 `json:"kind"`    // checkin_reminder / checkin_overdue / checkin_completion / period_summary
	Channel     string                 `json:"channel"` // email / push
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
	ScheduledAt string                 `json:"scheduled_at"`
	TaskCode    int64                  `json:"task_code"`
	UserID      int64                  `json:"user_id"`
	CheckInID   int64                  `json:"check_in_id,omitempty"`
}
