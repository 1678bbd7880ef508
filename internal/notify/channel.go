package notify

import (
	"context"

	"GoalPulse/internal/model"
)

// Notification 一次投递请求，channel 无关
type Notification struct {
	Payload   map[string]interface{}
	User      *model.User
	CheckInID *int64
	Kind      model.NotificationKind
	Title     string
	Body      string
}

// Channel 单个通知通道，email / push 投队列，in-app 直接落库
type Channel interface {
	Name() model.NotificationChannel
	Deliver(ctx context.Context, n Notification) error
}
