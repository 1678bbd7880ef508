package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"GoalPulse/internal/model"
	"GoalPulse/internal/model/dto"
	"GoalPulse/internal/service"
	"GoalPulse/pkg/errors"
	"GoalPulse/pkg/response"
)

// GetUnreadNotifications 拉取未读 in-app 通知
// GET /v1/notifications/unread?limit=50
func GetUnreadNotifications(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(ctx, c, errors.InvalidRequest)
			return
		}
		limit = parsed
	}

	notifications, err := service.Notification().GetUnread(ctx, userID, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	items := make([]dto.InAppNotificationItem, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, toInAppItem(n))
	}

	response.Success(ctx, c, items)
}

// MarkNotificationRead 标记单条通知已读
// POST /v1/notifications/:id/read
func MarkNotificationRead(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	notificationID, err := pathID(c)
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}

	if err := service.Notification().MarkRead(ctx, userID, notificationID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}

func toInAppItem(n *model.InAppNotification) dto.InAppNotificationItem {
	return dto.InAppNotificationItem{
		ID:        strconv.FormatInt(n.ID, 10),
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}
