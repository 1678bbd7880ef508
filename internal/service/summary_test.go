package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoalPulse/internal/model"
	"GoalPulse/internal/notify"
)

func newSummaryFixture() (*SummaryService, *fakeCheckInStore, *fakeNotificationStore) {
	checkIns := newFakeCheckInStore()
	notifications := &fakeNotificationStore{}
	users := &fakeUserStore{users: map[int64]*model.User{
		1: {BaseModel: model.BaseModel{ID: 1}, WeeklySummaryEnabled: true, Status: model.UserStatusActive},
		2: {BaseModel: model.BaseModel{ID: 2}, MonthlySummaryEnabled: true, Status: model.UserStatusActive},
	}}

	dispatcher := notify.NewDispatcher(notify.NewInAppChannel(notifications))
	return NewSummaryService(checkIns, users, dispatcher), checkIns, notifications
}

func seedSummaryCheckIn(t *testing.T, checkIns *fakeCheckInStore, userID int64, status model.CheckInStatus, scheduled time.Time) {
	t.Helper()
	err := checkIns.Create(context.Background(), &model.CheckIn{
		PublicID:      scheduled.UnixNano(),
		UserID:        userID,
		GoalID:        1,
		Frequency:     "daily",
		ScheduledDate: scheduled,
		Status:        status,
	})
	require.NoError(t, err)
}

func TestCollectStats(t *testing.T) {
	svc, checkIns, _ := newSummaryFixture()
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)

	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusCompleted, now.AddDate(0, 0, -1))
	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusCompleted, now.AddDate(0, 0, -2))
	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusMissed, now.AddDate(0, 0, -3))
	// 周期外的数据不计入
	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusCompleted, now.AddDate(0, 0, -30))

	stats, err := svc.CollectStats(context.Background(), 1, now.AddDate(0, 0, -7), now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, int64(1), stats.Missed)
	assert.InDelta(t, 2.0/3.0, stats.CompletionRate(), 0.001)
	// 连续完成从最近一条往回数，遇到 missed 截止
	assert.Equal(t, int64(2), stats.Streak)
}

func TestCollectStatsStreakIgnoresPendingTail(t *testing.T) {
	svc, checkIns, _ := newSummaryFixture()
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)

	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusCompleted, now.AddDate(0, 0, -3))
	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusCompleted, now.AddDate(0, 0, -2))
	// 还没到终态的排期不影响连续计数
	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusScheduled, now.AddDate(0, 0, -1))

	stats, err := svc.CollectStats(context.Background(), 1, now.AddDate(0, 0, -7), now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Streak)
}

func TestCollectStatsStreakResetByMiss(t *testing.T) {
	svc, checkIns, _ := newSummaryFixture()
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)

	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusCompleted, now.AddDate(0, 0, -2))
	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusMissed, now.AddDate(0, 0, -1))

	stats, err := svc.CollectStats(context.Background(), 1, now.AddDate(0, 0, -7), now)
	require.NoError(t, err)

	assert.Zero(t, stats.Streak)
}

func TestCompletionRateEmptyPeriod(t *testing.T) {
	assert.Zero(t, PeriodStats{}.CompletionRate())
}

func TestSendWeeklySummaries(t *testing.T) {
	svc, checkIns, notifications := newSummaryFixture()
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)

	seedSummaryCheckIn(t, checkIns, 1, model.CheckInStatusCompleted, now.AddDate(0, 0, -1))

	sent, err := svc.SendWeeklySummaries(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, notifications.inApp, 1)
	assert.Equal(t, model.NotificationKindSummary, notifications.inApp[0].Kind)
	assert.Contains(t, notifications.inApp[0].Body, "完成 1 次")
}

func TestSendWeeklySummariesSkipsEmptyPeriods(t *testing.T) {
	svc, _, notifications := newSummaryFixture()
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)

	sent, err := svc.SendWeeklySummaries(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, notifications.inApp)
}

func TestSendMonthlySummariesUsesPreviousMonth(t *testing.T) {
	svc, checkIns, notifications := newSummaryFixture()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	// 2 月的数据计入，3 月的不计入
	seedSummaryCheckIn(t, checkIns, 2, model.CheckInStatusCompleted, time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC))
	seedSummaryCheckIn(t, checkIns, 2, model.CheckInStatusCompleted, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))

	sent, err := svc.SendMonthlySummaries(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, notifications.inApp, 1)
	assert.Contains(t, notifications.inApp[0].Body, "完成 1 次")
}
