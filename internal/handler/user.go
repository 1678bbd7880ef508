package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"GoalPulse/internal/model/dto"
	"GoalPulse/internal/service"
	"GoalPulse/pkg/errors"
	"GoalPulse/pkg/response"
)

// GetNotificationSettings 查询收件设置
// GET /v1/users/me/notification-settings
func GetNotificationSettings(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	settings, err := service.User().GetNotificationSettings(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, settings)
}

// UpdateNotificationSettings 更新收件设置
// PUT /v1/users/me/notification-settings
func UpdateNotificationSettings(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	var req dto.NotificationSettingsRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	settings, err := service.User().UpdateNotificationSettings(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, settings)
}
