package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoalPulse/internal/recurrence"
	pkgerrors "GoalPulse/pkg/errors"
)

func newWeeklyCheckIn(scheduled time.Time) *CheckIn {
	return &CheckIn{
		PublicID:      1001,
		UserID:        42,
		GoalID:        7,
		Frequency:     recurrence.FrequencyWeekly,
		ScheduledDate: scheduled,
		Status:        CheckInStatusScheduled,
		IsRecurring:   true,
		Reminder:      DefaultReminderSettings(),
	}
}

func TestComplete_AnchorsNextOnScheduledDate(t *testing.T) {
	scheduled := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	completedAt := time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC)

	c := newWeeklyCheckIn(scheduled)
	require.NoError(t, c.Complete(Assessment{"mood": "good"}, completedAt))

	assert.Equal(t, CheckInStatusCompleted, c.Status)
	require.NotNil(t, c.CompletedDate)
	assert.Equal(t, completedAt, *c.CompletedDate)

	// 迟到两天完成，下一次排期仍然锚定原排期时间
	require.NotNil(t, c.NextScheduledDate)
	assert.Equal(t, time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC), *c.NextScheduledDate)
}

func TestComplete_Twice(t *testing.T) {
	c := newWeeklyCheckIn(time.Now())
	require.NoError(t, c.Complete(nil, time.Now()))

	err := c.Complete(nil, time.Now())
	assert.ErrorIs(t, err, pkgerrors.CheckInAlreadyCompleted)
}

func TestMiss_AfterComplete(t *testing.T) {
	c := newWeeklyCheckIn(time.Now())
	require.NoError(t, c.Complete(nil, time.Now()))

	assert.ErrorIs(t, c.Miss(), pkgerrors.CheckInAlreadyCompleted)
}

func TestMiss_AdvancesRecurringSeries(t *testing.T) {
	scheduled := time.Date(2024, time.February, 1, 20, 0, 0, 0, time.UTC)
	c := newWeeklyCheckIn(scheduled)

	require.NoError(t, c.Miss())
	assert.Equal(t, CheckInStatusMissed, c.Status)
	require.NotNil(t, c.NextScheduledDate)
	assert.Equal(t, scheduled.AddDate(0, 0, 7), *c.NextScheduledDate)
}

func TestMiss_NonRecurringLeavesNextEmpty(t *testing.T) {
	c := newWeeklyCheckIn(time.Now())
	c.IsRecurring = false

	require.NoError(t, c.Miss())
	assert.Nil(t, c.NextScheduledDate)
}

func TestReschedule_ResetsStatus(t *testing.T) {
	c := newWeeklyCheckIn(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, c.Miss())

	newDate := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, c.Reschedule(newDate))

	assert.Equal(t, CheckInStatusScheduled, c.Status)
	assert.Equal(t, newDate, c.ScheduledDate)
	require.NotNil(t, c.NextScheduledDate)
	assert.Equal(t, newDate.AddDate(0, 0, 7), *c.NextScheduledDate)
}

func TestReschedule_RejectsCompleted(t *testing.T) {
	c := newWeeklyCheckIn(time.Now())
	require.NoError(t, c.Complete(nil, time.Now()))

	err := c.Reschedule(time.Now().AddDate(0, 0, 1))
	assert.ErrorIs(t, err, pkgerrors.CheckInCompleted)
}

func TestCancelled_NeverTransitions(t *testing.T) {
	c := newWeeklyCheckIn(time.Now())
	c.Status = CheckInStatusCancelled

	assert.ErrorIs(t, c.Complete(nil, time.Now()), pkgerrors.CheckInCancelled)
	assert.ErrorIs(t, c.Miss(), pkgerrors.CheckInCancelled)
	assert.ErrorIs(t, c.Reschedule(time.Now()), pkgerrors.CheckInCancelled)
}

func TestPending_TreatedAsDue(t *testing.T) {
	c := newWeeklyCheckIn(time.Now())
	c.Status = CheckInStatusPending

	assert.True(t, c.IsDue())
	require.NoError(t, c.Complete(nil, time.Now()))
	assert.Equal(t, CheckInStatusCompleted, c.Status)
}

func TestAdvanceSeries_StopsAtRecurrenceEnd(t *testing.T) {
	scheduled := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	end := scheduled.AddDate(0, 0, 3) // 下一周已超出系列终点

	c := newWeeklyCheckIn(scheduled)
	c.RecurrenceEndDate = &end

	require.NoError(t, c.Complete(nil, scheduled))
	assert.Nil(t, c.NextScheduledDate)
}

func TestReminderWindowOpen(t *testing.T) {
	scheduled := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	c := newWeeklyCheckIn(scheduled)
	c.Reminder.AdvanceTimeMinutes = 60

	assert.True(t, c.ReminderWindowOpen(time.Date(2024, time.January, 1, 8, 15, 0, 0, time.UTC)))
	assert.False(t, c.ReminderWindowOpen(time.Date(2024, time.January, 1, 7, 0, 0, 0, time.UTC)))
	assert.False(t, c.ReminderWindowOpen(scheduled.Add(time.Minute)))

	c.Reminder.Enabled = false
	assert.False(t, c.ReminderWindowOpen(time.Date(2024, time.January, 1, 8, 30, 0, 0, time.UTC)))
}
