package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"GoalPulse/internal/model"
	"GoalPulse/internal/notify"
	"GoalPulse/internal/store"
	"GoalPulse/pkg/logger"
)

// SummaryService 周报 / 月报统计与投放
type SummaryService struct {
	checkIns   store.CheckInStore
	users      store.UserStore
	dispatcher *notify.Dispatcher
}

var (
	summaryService *SummaryService
	summaryOnce    sync.Once
)

func Summary() *SummaryService {
	summaryOnce.Do(func() {
		notifications := store.NewNotificationStore()
		summaryService = NewSummaryService(
			store.NewCheckInStore(),
			store.NewUserStore(),
			notify.NewDispatcher(
				notify.NewEmailChannel(notifications),
				notify.NewPushChannel(notifications),
				notify.NewInAppChannel(notifications),
			),
		)
	})

	return summaryService
}

// NewSummaryService 依赖注入版本，测试用
func NewSummaryService(checkIns store.CheckInStore, users store.UserStore, dispatcher *notify.Dispatcher) *SummaryService {
	return &SummaryService{
		checkIns:   checkIns,
		users:      users,
		dispatcher: dispatcher,
	}
}

// PeriodStats 一个统计周期内的打卡汇总
type PeriodStats struct {
	From      time.Time
	To        time.Time
	Completed int64
	Missed    int64
	Scheduled int64
	// Streak 周期尾部的连续完成次数，遇到 missed 归零
	Streak int64
}

// CompletionRate 完成率，无数据时返回 0
func (p PeriodStats) CompletionRate() float64 {
	total := p.Completed + p.Missed
	if total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(total)
}

// SendWeeklySummaries 给开启周报的用户投放过去 7 天的汇总，返回投放人数
func (s *SummaryService) SendWeeklySummaries(ctx context.Context, now time.Time) (int, error) {
	from := now.AddDate(0, 0, -7)
	return s.sendSummaries(ctx, true, "每周打卡周报", from, now)
}

// SendMonthlySummaries 给开启月报的用户投放上一个自然月的汇总，返回投放人数
func (s *SummaryService) SendMonthlySummaries(ctx context.Context, now time.Time) (int, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	from := monthStart.AddDate(0, -1, 0)
	return s.sendSummaries(ctx, false, "每月打卡月报", from, monthStart)
}

func (s *SummaryService) sendSummaries(ctx context.Context, weekly bool, title string, from, to time.Time) (int, error) {
	users, err := s.users.FindSummaryRecipients(ctx, weekly)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		stats, err := s.CollectStats(ctx, user.ID, from, to)
		if err != nil {
			logger.Logger.Warn("Failed to collect summary stats",
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}

		// 周期内没有任何排期就不打扰用户
		if stats.Completed+stats.Missed+stats.Scheduled == 0 {
			continue
		}

		body := buildSummaryBody(stats)
		payload := map[string]interface{}{
			"from":            from.Format(time.RFC3339),
			"to":              to.Format(time.RFC3339),
			"completed":       stats.Completed,
			"missed":          stats.Missed,
			"scheduled":       stats.Scheduled,
			"completion_rate": stats.CompletionRate(),
			"streak":          stats.Streak,
		}

		s.dispatcher.DispatchSummary(ctx, user, title, body, payload)
		sent++
	}

	return sent, nil
}

// CollectStats 聚合一个周期内的打卡数据
func (s *SummaryService) CollectStats(ctx context.Context, userID int64, from, to time.Time) (PeriodStats, error) {
	stats := PeriodStats{From: from, To: to}

	completed, err := s.checkIns.CountByStatus(ctx, userID, model.CheckInStatusCompleted, from, to)
	if err != nil {
		return stats, err
	}
	missed, err := s.checkIns.CountByStatus(ctx, userID, model.CheckInStatusMissed, from, to)
	if err != nil {
		return stats, err
	}
	scheduled, err := s.checkIns.CountByStatus(ctx, userID, model.CheckInStatusScheduled, from, to)
	if err != nil {
		return stats, err
	}

	stats.Completed = completed
	stats.Missed = missed
	stats.Scheduled = scheduled

	streak, err := s.collectStreak(ctx, userID, from, to)
	if err != nil {
		return stats, err
	}
	stats.Streak = streak

	return stats, nil
}

// collectStreak 按排期时间从后往前数连续完成的次数，
// 还没到终态的排期跳过，碰到 missed/cancelled 截止
func (s *SummaryService) collectStreak(ctx context.Context, userID int64, from, to time.Time) (int64, error) {
	items, err := s.checkIns.FindByDateRange(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].ScheduledDate.Before(items[b].ScheduledDate)
	})

	var streak int64
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].IsDue() {
			continue
		}
		if items[i].Status != model.CheckInStatusCompleted {
			break
		}
		streak++
	}

	return streak, nil
}

func buildSummaryBody(stats PeriodStats) string {
	body := fmt.Sprintf(
		"%s 至 %s：完成 %d 次，错过 %d 次，完成率 %.0f%%。",
		stats.From.Format("2006-01-02"),
		stats.To.Format("2006-01-02"),
		stats.Completed,
		stats.Missed,
		stats.CompletionRate()*100,
	)
	if stats.Streak > 1 {
		body += fmt.Sprintf("当前连续完成 %d 次，继续保持！", stats.Streak)
	}
	return body
}
