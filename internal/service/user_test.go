package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoalPulse/internal/model"
	"GoalPulse/internal/model/dto"
	pkgerrors "GoalPulse/pkg/errors"
)

func newUserFixture() (*UserService, *fakeUserStore) {
	users := &fakeUserStore{users: map[int64]*model.User{
		1: {
			PublicID: 1,
			Timezone: "UTC",
		},
	}}
	return NewUserService(users), users
}

func TestGetNotificationSettingsEmpty(t *testing.T) {
	svc, _ := newUserFixture()

	settings, err := svc.GetNotificationSettings(context.Background(), 1)
	require.NoError(t, err)

	assert.False(t, settings.EmailConfigured)
	assert.False(t, settings.PushConfigured)
	assert.False(t, settings.WeeklySummaryEnabled)
	assert.Equal(t, "UTC", settings.Timezone)
}

func TestGetNotificationSettingsUnknownUser(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.GetNotificationSettings(context.Background(), 404)
	assert.ErrorIs(t, err, pkgerrors.UserNotFound)
}

func TestUpdateNotificationSettingsEmail(t *testing.T) {
	svc, users := newUserFixture()

	email := "someone@example.com"
	settings, err := svc.UpdateNotificationSettings(context.Background(), 1, dto.NotificationSettingsRequest{
		Email: &email,
	})
	require.NoError(t, err)

	assert.True(t, settings.EmailConfigured)

	// 明文不落库，密文和 hash 都写入
	stored := users.users[1]
	assert.NotEmpty(t, stored.EmailEncrypted)
	assert.NotContains(t, stored.EmailEncrypted, email)
	assert.Len(t, stored.EmailHash, 64)
}

func TestUpdateNotificationSettingsInvalidEmail(t *testing.T) {
	svc, users := newUserFixture()

	email := "not-an-email"
	_, err := svc.UpdateNotificationSettings(context.Background(), 1, dto.NotificationSettingsRequest{
		Email: &email,
	})
	assert.ErrorIs(t, err, pkgerrors.EmailInvalid)
	assert.Empty(t, users.users[1].EmailEncrypted)
}

func TestUpdateNotificationSettingsPartial(t *testing.T) {
	svc, users := newUserFixture()
	users.users[1].PushToken = "device-token"

	enabled := true
	settings, err := svc.UpdateNotificationSettings(context.Background(), 1, dto.NotificationSettingsRequest{
		WeeklySummaryEnabled: &enabled,
	})
	require.NoError(t, err)

	// nil 字段保持原值
	assert.True(t, settings.WeeklySummaryEnabled)
	assert.True(t, settings.PushConfigured)
	assert.False(t, settings.MonthlySummaryEnabled)
}
