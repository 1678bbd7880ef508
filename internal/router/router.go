package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"GoalPulse/internal/handler"
	"GoalPulse/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// 打卡排期路由
	checkIns := v1.Group("/check-ins")
	checkIns.Use(middleware.AuthMiddleware())
	checkIns.Use(middleware.GeneralRateLimitMiddleware())
	{
		checkIns.POST("", handler.CreateCheckIn)
		checkIns.POST("/series", middleware.SeriesRateLimitMiddleware(), handler.CreateCheckInSeries)
		checkIns.GET("", handler.GetCheckInsByRange)
		checkIns.GET("/upcoming", handler.GetUpcomingCheckIns)
		checkIns.GET("/overdue", handler.GetOverdueCheckIns)
		checkIns.POST("/:id/complete", handler.CompleteCheckIn)
		checkIns.POST("/:id/miss", handler.MissCheckIn)
		checkIns.POST("/:id/reschedule", handler.RescheduleCheckIn)
	}

	// 收件设置路由
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me/notification-settings", handler.GetNotificationSettings)
		users.PUT("/me/notification-settings", handler.UpdateNotificationSettings)
	}

	// in-app 通知路由
	notifications := v1.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	notifications.Use(middleware.GeneralRateLimitMiddleware())
	{
		notifications.GET("/unread", handler.GetUnreadNotifications)
		notifications.POST("/:id/read", handler.MarkNotificationRead)
	}

	// 调度任务运维路由
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.GET("/jobs", handler.ListJobs)
		admin.POST("/jobs/:name/trigger", handler.TriggerJob)
	}
}
