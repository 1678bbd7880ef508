package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"GoalPulse/internal/cache"
	"GoalPulse/internal/model"
	pkgerrors "GoalPulse/pkg/errors"
	"GoalPulse/pkg/logger"
	"GoalPulse/pkg/metrics"
)

// Outcome 单个通道的投放结果
type Outcome struct {
	Err     error
	Channel model.NotificationChannel
}

// DispatchMarker 投放去重标记。键包含排期时间，改期后的新窗口不受旧标记影响
type DispatchMarker interface {
	TryMark(ctx context.Context, checkInID int64, kind string, scheduledDate time.Time, ttl time.Duration) (bool, error)
	Unmark(ctx context.Context, checkInID int64, kind string, scheduledDate time.Time) error
}

// redisDispatchMarker 生产实现，标记落 redis
type redisDispatchMarker struct{}

func (redisDispatchMarker) TryMark(ctx context.Context, checkInID int64, kind string, scheduledDate time.Time, ttl time.Duration) (bool, error) {
	return cache.TryMarkDispatched(ctx, checkInID, kind, scheduledDate, ttl)
}

func (redisDispatchMarker) Unmark(ctx context.Context, checkInID int64, kind string, scheduledDate time.Time) error {
	return cache.UnmarkDispatched(ctx, checkInID, kind, scheduledDate)
}

// Dispatcher 把一条通知扇出到多个通道，单个通道失败不影响其他通道
type Dispatcher struct {
	marker   DispatchMarker
	channels map[model.NotificationChannel]Channel
	breakers map[model.NotificationChannel]*ChannelBreaker
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	return NewDispatcherWithMarker(redisDispatchMarker{}, channels...)
}

// NewDispatcherWithMarker 依赖注入版本，测试用
func NewDispatcherWithMarker(marker DispatchMarker, channels ...Channel) *Dispatcher {
	d := &Dispatcher{
		marker:   marker,
		channels: make(map[model.NotificationChannel]Channel, len(channels)),
		breakers: make(map[model.NotificationChannel]*ChannelBreaker, len(channels)),
	}
	for _, c := range channels {
		d.channels[c.Name()] = c
		// 连续失败5次后熔断，30秒后尝试恢复
		d.breakers[c.Name()] = NewChannelBreaker(string(c.Name()), 5, 30*time.Second)
	}
	return d
}

// Dispatch 依次尝试每个请求的通道，全部通道的结果都会返回
func (d *Dispatcher) Dispatch(ctx context.Context, targets []model.NotificationChannel, n Notification) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))

	for _, target := range targets {
		channel, ok := d.channels[target]
		if !ok {
			outcomes = append(outcomes, Outcome{Channel: target, Err: pkgerrors.ChannelUnsupported})
			metrics.RecordDispatched(string(n.Kind), string(target), "unsupported")
			continue
		}

		breaker := d.breakers[target]
		err := breaker.Call(func() error {
			return channel.Deliver(ctx, n)
		})

		if err != nil {
			logger.Logger.Warn("Channel delivery failed, continuing with remaining channels",
				zap.String("channel", string(target)),
				zap.String("kind", string(n.Kind)),
				zap.Int64("user_id", userID(n)),
				zap.Error(err),
			)
			metrics.RecordDispatched(string(n.Kind), string(target), "failed")
		} else {
			metrics.RecordDispatched(string(n.Kind), string(target), "ok")
		}

		outcomes = append(outcomes, Outcome{Channel: target, Err: err})
	}

	return outcomes
}

// DispatchReminder 在提醒窗口内投放打卡提醒，同一次打卡最多投放一次
func (d *Dispatcher) DispatchReminder(ctx context.Context, checkIn *model.CheckIn, user *model.User) ([]Outcome, error) {
	// 调度任务的扫描间隔小于提醒窗口，重叠扫描靠这个标记去重
	first, err := d.marker.TryMark(ctx, checkIn.ID, string(model.NotificationKindReminder), checkIn.ScheduledDate, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire dispatch mark: %w", err)
	}
	if !first {
		return nil, nil
	}

	n := Notification{
		Payload: map[string]interface{}{
			"check_in_public_id": checkIn.PublicID,
			"scheduled_date":     checkIn.ScheduledDate.Format(time.RFC3339),
			"frequency":          string(checkIn.Frequency),
		},
		User:      user,
		CheckInID: &checkIn.ID,
		Kind:      model.NotificationKindReminder,
		Title:     "打卡提醒",
		Body: fmt.Sprintf("你的目标打卡将于 %s 到期，记得按时完成。",
			checkIn.ScheduledDate.Format("2006-01-02 15:04")),
	}

	outcomes := d.Dispatch(ctx, reminderChannels(checkIn.Reminder.Methods), n)

	// 全部通道都失败时清掉标记，下一轮扫描还能重试
	if allFailed(outcomes) {
		if unmarkErr := d.marker.Unmark(ctx, checkIn.ID, string(model.NotificationKindReminder), checkIn.ScheduledDate); unmarkErr != nil {
			logger.Logger.Warn("Failed to unmark dispatched after total failure",
				zap.Int64("check_in_id", checkIn.ID),
				zap.Error(unmarkErr),
			)
		}
	}

	return outcomes, nil
}

// DispatchOverdue 投放过期提醒，无论用户提醒设置如何都走 email，附带已过期时长
func (d *Dispatcher) DispatchOverdue(ctx context.Context, checkIn *model.CheckIn, user *model.User, now time.Time) ([]Outcome, error) {
	first, err := d.marker.TryMark(ctx, checkIn.ID, string(model.NotificationKindOverdue), checkIn.ScheduledDate, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire dispatch mark: %w", err)
	}
	if !first {
		return nil, nil
	}

	overdueFor := now.Sub(checkIn.ScheduledDate).Round(time.Minute)

	n := Notification{
		Payload: map[string]interface{}{
			"check_in_public_id": checkIn.PublicID,
			"scheduled_date":     checkIn.ScheduledDate.Format(time.RFC3339),
			"overdue_minutes":    int(overdueFor.Minutes()),
		},
		User:      user,
		CheckInID: &checkIn.ID,
		Kind:      model.NotificationKindOverdue,
		Title:     "打卡已过期",
		Body: fmt.Sprintf("你原定于 %s 的打卡已超时 %s，记录已标记为错过。",
			checkIn.ScheduledDate.Format("2006-01-02 15:04"), overdueFor),
	}

	targets := []model.NotificationChannel{
		model.NotificationChannelEmail,
		model.NotificationChannelInApp,
	}

	return d.Dispatch(ctx, targets, n), nil
}

// DispatchCompletion 投放完成确认，只落 in-app，不打扰用户。
// 系列还有下一次排期时，回执里带上下一次时间。
func (d *Dispatcher) DispatchCompletion(ctx context.Context, checkIn *model.CheckIn, user *model.User) []Outcome {
	payload := map[string]interface{}{
		"check_in_public_id":  checkIn.PublicID,
		"scheduled_date":      checkIn.ScheduledDate.Format(time.RFC3339),
		"next_scheduled_date": nil,
	}
	body := "已记录这次打卡，继续保持。"
	if checkIn.NextScheduledDate != nil {
		payload["next_scheduled_date"] = checkIn.NextScheduledDate.Format(time.RFC3339)
		body = fmt.Sprintf("已记录这次打卡，下一次排期在 %s。",
			checkIn.NextScheduledDate.Format("2006-01-02 15:04"))
	}

	n := Notification{
		Payload:   payload,
		User:      user,
		CheckInID: &checkIn.ID,
		Kind:      model.NotificationKindCompletion,
		Title:     "打卡完成",
		Body:      body,
	}

	return d.Dispatch(ctx, []model.NotificationChannel{model.NotificationChannelInApp}, n)
}

// DispatchSummary 投放周期汇总（周报 / 月报）
func (d *Dispatcher) DispatchSummary(ctx context.Context, user *model.User, title, body string, payload map[string]interface{}) []Outcome {
	n := Notification{
		Payload: payload,
		User:    user,
		Kind:    model.NotificationKindSummary,
		Title:   title,
		Body:    body,
	}

	targets := []model.NotificationChannel{
		model.NotificationChannelEmail,
		model.NotificationChannelInApp,
	}

	return d.Dispatch(ctx, targets, n)
}

// reminderChannels 把用户的提醒方式映射为通道列表，空配置时退化为 email
func reminderChannels(methods []model.ReminderMethod) []model.NotificationChannel {
	if len(methods) == 0 {
		return []model.NotificationChannel{model.NotificationChannelEmail}
	}

	targets := make([]model.NotificationChannel, 0, len(methods))
	for _, m := range methods {
		switch m {
		case model.ReminderMethodEmail:
			targets = append(targets, model.NotificationChannelEmail)
		case model.ReminderMethodPush:
			targets = append(targets, model.NotificationChannelPush)
		case model.ReminderMethodInApp:
			targets = append(targets, model.NotificationChannelInApp)
		}
	}
	return targets
}

func allFailed(outcomes []Outcome) bool {
	if len(outcomes) == 0 {
		return false
	}
	for _, o := range outcomes {
		if o.Err == nil {
			return false
		}
	}
	return true
}

func userID(n Notification) int64 {
	if n.User == nil {
		return 0
	}
	return n.User.ID
}
