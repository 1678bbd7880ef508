package schedule

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"GoalPulse/config"
	"GoalPulse/internal/cache"
	"GoalPulse/internal/service"
	"GoalPulse/internal/store"
	"GoalPulse/pkg/logger"
)

// 任务名是运维接口的一部分，改名等于改 API
const (
	JobCheckInReminders = "checkin-reminders"
	JobOverdueCheckIns  = "overdue-checkins"
	JobWeeklySummaries  = "weekly-summaries"
	JobMonthlySummaries = "monthly-summaries"
	JobCleanup          = "cleanup"
)

// RegisterJobs 注册全部调度任务
func RegisterJobs(o *Orchestrator) {
	cfg := config.Cfg

	o.Register(JobCheckInReminders,
		IntervalSchedule{Every: time.Duration(cfg.ReminderJobIntervalMinutes) * time.Minute},
		withJobLock(JobCheckInReminders, runReminderScan))

	o.Register(JobOverdueCheckIns,
		IntervalSchedule{Every: time.Duration(cfg.OverdueJobIntervalHours) * time.Hour},
		withJobLock(JobOverdueCheckIns, runOverdueScan))

	o.Register(JobWeeklySummaries,
		WeeklySchedule{Weekday: parseWeekday(cfg.WeeklySummaryDay), At: cfg.WeeklySummaryTime},
		withJobLock(JobWeeklySummaries, runWeeklySummaries))

	o.Register(JobMonthlySummaries,
		MonthlySchedule{Day: cfg.MonthlySummaryDay, At: cfg.MonthlySummaryTime},
		withJobLock(JobMonthlySummaries, runMonthlySummaries))

	o.Register(JobCleanup,
		DailySchedule{At: "03:00:00"},
		withJobLock(JobCleanup, runCleanup))
}

// withJobLock 多实例部署时用 redis 锁保证同一轮只有一个实例执行
func withJobLock(name string, fn JobFunc) JobFunc {
	return func(ctx context.Context) error {
		acquired, err := cache.TryLock(ctx, "job:"+name, 5*time.Minute)
		if err != nil {
			// redis 不可用时降级为本实例直接执行
			logger.Logger.Warn("Job lock unavailable, running without it",
				zap.String("job", name),
				zap.Error(err),
			)
			return fn(ctx)
		}
		if !acquired {
			logger.Logger.Info("Job lock held by another instance, skipping",
				zap.String("job", name),
			)
			return nil
		}
		defer func() {
			if unlockErr := cache.Unlock(ctx, "job:"+name); unlockErr != nil {
				logger.Logger.Warn("Failed to release job lock",
					zap.String("job", name),
					zap.Error(unlockErr),
				)
			}
		}()

		return fn(ctx)
	}
}

func runReminderScan(ctx context.Context) error {
	runID := uuid.NewString()
	now := time.Now()

	dispatched, err := service.CheckIn().DispatchDueReminders(ctx, now)
	if err != nil {
		return err
	}

	logger.Logger.Info("Reminder scan completed",
		zap.String("run_id", runID),
		zap.Int("dispatched", dispatched),
	)
	return nil
}

func runOverdueScan(ctx context.Context) error {
	runID := uuid.NewString()
	now := time.Now()

	missed, err := service.CheckIn().ProcessOverdue(ctx, now)
	if err != nil {
		return err
	}

	logger.Logger.Info("Overdue scan completed",
		zap.String("run_id", runID),
		zap.Int("missed", missed),
	)
	return nil
}

func runWeeklySummaries(ctx context.Context) error {
	sent, err := service.Summary().SendWeeklySummaries(ctx, time.Now())
	if err != nil {
		return err
	}

	logger.Logger.Info("Weekly summaries sent",
		zap.Int("recipients", sent),
	)
	return nil
}

func runMonthlySummaries(ctx context.Context) error {
	sent, err := service.Summary().SendMonthlySummaries(ctx, time.Now())
	if err != nil {
		return err
	}

	logger.Logger.Info("Monthly summaries sent",
		zap.Int("recipients", sent),
	)
	return nil
}

func runCleanup(ctx context.Context) error {
	now := time.Now()
	retention := time.Duration(config.Cfg.CleanupRetentionDays) * 24 * time.Hour

	// 超过保留期仍待办的打卡补记为 missed，记录本身不删
	missedCheckIns, err := service.CheckIn().Cleanup(ctx, now, retention)
	if err != nil {
		return err
	}

	// 通知任务和 in-app 行是引擎自己的流水，过期直接清掉
	notifications := store.NewNotificationStore()
	cutoff := now.Add(-retention)
	deletedTasks, err := notifications.DeleteStaleTasks(ctx, cutoff)
	if err != nil {
		return err
	}
	deletedInApp, err := notifications.DeleteStaleInApp(ctx, cutoff)
	if err != nil {
		return err
	}

	logger.Logger.Info("Cleanup completed",
		zap.Int64("check_ins_missed", missedCheckIns),
		zap.Int64("tasks_deleted", deletedTasks),
		zap.Int64("in_app_deleted", deletedInApp),
		zap.Time("cutoff", cutoff),
	)
	return nil
}

func parseWeekday(name string) time.Weekday {
	switch strings.ToLower(name) {
	case "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}
