package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"GoalPulse/internal/model/dto"
	"GoalPulse/internal/store"
	"GoalPulse/pkg/logger"
)

// UserService 收件设置管理。用户档案本体归外部认证模块，
// 这里只动通知引擎关心的字段。
type UserService struct {
	users store.UserStore
}

var (
	userService *UserService
	userOnce    sync.Once
)

func User() *UserService {
	userOnce.Do(func() {
		userService = NewUserService(store.NewUserStore())
	})

	return userService
}

// NewUserService 依赖注入版本，测试用
func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

// GetNotificationSettings 查询收件设置，邮箱和 push token 只回显是否已配置
func (s *UserService) GetNotificationSettings(ctx context.Context, userID int64) (dto.NotificationSettingsItem, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.NotificationSettingsItem{}, err
	}

	return dto.NotificationSettingsItem{
		EmailConfigured:       user.EmailEncrypted != "",
		PushConfigured:        user.PushToken != "",
		Timezone:              user.Timezone,
		WeeklySummaryEnabled:  user.WeeklySummaryEnabled,
		MonthlySummaryEnabled: user.MonthlySummaryEnabled,
	}, nil
}

// UpdateNotificationSettings 更新收件设置，nil 字段保持原值
func (s *UserService) UpdateNotificationSettings(ctx context.Context, userID int64, req dto.NotificationSettingsRequest) (dto.NotificationSettingsItem, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.NotificationSettingsItem{}, err
	}

	if req.Email != nil {
		if err := user.SetEmail(*req.Email); err != nil {
			return dto.NotificationSettingsItem{}, err
		}
	}
	if req.PushToken != nil {
		user.PushToken = *req.PushToken
	}
	if req.WeeklySummaryEnabled != nil {
		user.WeeklySummaryEnabled = *req.WeeklySummaryEnabled
	}
	if req.MonthlySummaryEnabled != nil {
		user.MonthlySummaryEnabled = *req.MonthlySummaryEnabled
	}

	if err := s.users.Save(ctx, user); err != nil {
		return dto.NotificationSettingsItem{}, fmt.Errorf("failed to save notification settings: %w", err)
	}

	logger.Logger.Info("Notification settings updated",
		zap.Int64("user_id", userID),
		zap.Bool("email_changed", req.Email != nil),
		zap.Bool("push_changed", req.PushToken != nil),
	)

	return dto.NotificationSettingsItem{
		EmailConfigured:       user.EmailEncrypted != "",
		PushConfigured:        user.PushToken != "",
		Timezone:              user.Timezone,
		WeeklySummaryEnabled:  user.WeeklySummaryEnabled,
		MonthlySummaryEnabled: user.MonthlySummaryEnabled,
	}, nil
}
