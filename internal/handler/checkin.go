package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"GoalPulse/internal/middleware"
	"GoalPulse/internal/model"
	"GoalPulse/internal/model/dto"
	"GoalPulse/internal/service"
	"GoalPulse/pkg/errors"
	"GoalPulse/pkg/response"
)

// CreateCheckIn 创建单次打卡排期
// POST /v1/check-ins
func CreateCheckIn(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	var req dto.CreateCheckInRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	checkIn, err := service.CheckIn().Create(ctx, userID, req, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, toCheckInItem(checkIn))
}

// CreateCheckInSeries 按重复规则批量生成打卡系列
// POST /v1/check-ins/series
func CreateCheckInSeries(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	var req dto.CreateSeriesRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	series, err := service.CheckIn().CreateSeries(ctx, userID, req, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	items := make([]dto.CheckInItem, 0, len(series))
	for _, checkIn := range series {
		items = append(items, toCheckInItem(checkIn))
	}

	response.Created(ctx, c, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}

// CompleteCheckIn 完成打卡
// POST /v1/check-ins/:id/complete
func CompleteCheckIn(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	checkInID, err := pathID(c)
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}

	var req dto.CompleteCheckInRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	checkIn, err := service.CheckIn().Complete(ctx, userID, checkInID, req, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toCheckInItem(checkIn))
}

// MissCheckIn 手动标记错过
// POST /v1/check-ins/:id/miss
func MissCheckIn(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	checkInID, err := pathID(c)
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}

	checkIn, err := service.CheckIn().Miss(ctx, userID, checkInID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toCheckInItem(checkIn))
}

// RescheduleCheckIn 打卡改期
// POST /v1/check-ins/:id/reschedule
func RescheduleCheckIn(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	checkInID, err := pathID(c)
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}

	var req dto.RescheduleCheckInRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	checkIn, err := service.CheckIn().Reschedule(ctx, userID, checkInID, req.NewDate, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toCheckInItem(checkIn))
}

// GetUpcomingCheckIns 查询未来待办打卡
// GET /v1/check-ins/upcoming?within_days=7
func GetUpcomingCheckIns(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	withinDays := 7
	if raw := c.Query("within_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(ctx, c, errors.InvalidRequest)
			return
		}
		withinDays = parsed
	}

	checkIns, err := service.CheckIn().GetUpcoming(ctx, userID, time.Duration(withinDays)*24*time.Hour, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toCheckInItems(checkIns))
}

// GetOverdueCheckIns 查询已逾期仍待办的打卡
// GET /v1/check-ins/overdue
func GetOverdueCheckIns(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	checkIns, err := service.CheckIn().GetOverdue(ctx, userID, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toCheckInItems(checkIns))
}

// GetCheckInsByRange 按日期范围查询打卡
// GET /v1/check-ins?from=2024-03-01&to=2024-03-31
func GetCheckInsByRange(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}

	checkIns, err := service.CheckIn().GetByDateRange(ctx, userID, from, to)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toCheckInItems(checkIns))
}

// currentUserID 从认证上下文取用户 public_id 并转成数值
func currentUserID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	raw, ok := middleware.GetUserID(ctx, c)
	if !ok {
		return 0, false
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return userID, true
}

func pathID(c *app.RequestContext) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// parseDateParam 接收 RFC3339 或 2006-01-02 两种格式
func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func toCheckInItem(checkIn *model.CheckIn) dto.CheckInItem {
	return dto.CheckInItem{
		ID:                strconv.FormatInt(checkIn.PublicID, 10),
		GoalID:            strconv.FormatInt(checkIn.GoalID, 10),
		Frequency:         string(checkIn.Frequency),
		Status:            string(checkIn.Status),
		ScheduledDate:     checkIn.ScheduledDate,
		NextScheduledDate: checkIn.NextScheduledDate,
		CompletedDate:     checkIn.CompletedDate,
		IsRecurring:       checkIn.IsRecurring,
	}
}

func toCheckInItems(checkIns []*model.CheckIn) []dto.CheckInItem {
	items := make([]dto.CheckInItem, 0, len(checkIns))
	for _, checkIn := range checkIns {
		items = append(items, toCheckInItem(checkIn))
	}
	return items
}
