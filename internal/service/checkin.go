package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"GoalPulse/internal/model"
	"GoalPulse/internal/model/dto"
	"GoalPulse/internal/notify"
	"GoalPulse/internal/recurrence"
	"GoalPulse/internal/store"
	pkgerrors "GoalPulse/pkg/errors"
	"GoalPulse/pkg/logger"
	"GoalPulse/pkg/metrics"
	"GoalPulse/pkg/snowflake"
)

const (
	// 一个系列一次最多生成的打卡数
	maxSeriesOccurrences = 50
	// EndDate 缺省时的生成边界
	defaultSeriesHorizon = 365 * 24 * time.Hour
	// 调度扫描时的最大提前量，超过这个值的 advance_time 视为配置错误
	maxReminderAdvance = 24 * time.Hour
)

type CheckInService struct {
	checkIns   store.CheckInStore
	goals      store.GoalStore
	users      store.UserStore
	dispatcher *notify.Dispatcher
}

var (
	checkInService *CheckInService
	checkInOnce    sync.Once
)

func CheckIn() *CheckInService {
	checkInOnce.Do(func() {
		notifications := store.NewNotificationStore()
		checkInService = NewCheckInService(
			store.NewCheckInStore(),
			store.NewGoalStore(),
			store.NewUserStore(),
			notify.NewDispatcher(
				notify.NewEmailChannel(notifications),
				notify.NewPushChannel(notifications),
				notify.NewInAppChannel(notifications),
			),
		)
	})

	return checkInService
}

// NewCheckInService 依赖注入版本，测试用
func NewCheckInService(checkIns store.CheckInStore, goals store.GoalStore, users store.UserStore, dispatcher *notify.Dispatcher) *CheckInService {
	return &CheckInService{
		checkIns:   checkIns,
		goals:      goals,
		users:      users,
		dispatcher: dispatcher,
	}
}

// Create 创建单次打卡
func (s *CheckInService) Create(ctx context.Context, userID int64, req dto.CreateCheckInRequest, now time.Time) (*model.CheckIn, error) {
	frequency, err := recurrence.ParseFrequency(req.Frequency)
	if err != nil {
		return nil, err
	}
	if req.CustomDays < 0 || req.CustomHours < 0 {
		return nil, pkgerrors.FrequencyInvalid
	}

	if req.ScheduledDate.IsZero() || req.ScheduledDate.Before(now) {
		return nil, pkgerrors.ScheduledDateInvalid
	}

	reminder, err := resolveReminder(req.Reminder)
	if err != nil {
		return nil, err
	}

	goal, err := s.goals.GetByPublicID(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, pkgerrors.GoalNotFound
	}

	publicID, err := snowflake.NextID(snowflake.GeneratorTypeCheckIn)
	if err != nil {
		return nil, err
	}

	checkIn := &model.CheckIn{
		PublicID:          publicID,
		UserID:            userID,
		GoalID:            goal.ID,
		JourneyID:         req.JourneyID,
		Frequency:         frequency,
		CustomDays:        req.CustomDays,
		CustomHours:       req.CustomHours,
		ScheduledDate:     req.ScheduledDate,
		IsRecurring:       req.IsRecurring,
		RecurrenceEndDate: req.EndDate,
		Status:            model.CheckInStatusScheduled,
		Reminder:          reminder,
	}

	if err := s.checkIns.Create(ctx, checkIn); err != nil {
		return nil, err
	}

	metrics.RecordCheckInCreated(1)
	logger.Logger.Info("Check-in created",
		zap.Int64("user_id", userID),
		zap.Int64("check_in_id", checkIn.PublicID),
		zap.String("frequency", string(frequency)),
	)

	return checkIn, nil
}

// CreateSeries 按规则批量生成一个重复系列
func (s *CheckInService) CreateSeries(ctx context.Context, userID int64, req dto.CreateSeriesRequest, now time.Time) ([]*model.CheckIn, error) {
	frequency, err := recurrence.ParseFrequency(req.Frequency)
	if err != nil {
		return nil, err
	}
	if req.CustomDays < 0 || req.CustomHours < 0 {
		return nil, pkgerrors.FrequencyInvalid
	}

	if req.StartDate.IsZero() {
		return nil, pkgerrors.ScheduledDateInvalid
	}

	horizon := req.StartDate.Add(defaultSeriesHorizon)
	if req.EndDate != nil {
		if !req.EndDate.After(req.StartDate) {
			return nil, pkgerrors.SeriesRangeInvalid
		}
		horizon = *req.EndDate
	}

	reminder, err := resolveReminder(req.Reminder)
	if err != nil {
		return nil, err
	}

	goal, err := s.goals.GetByPublicID(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, pkgerrors.GoalNotFound
	}

	rule := recurrence.Rule{
		Frequency:   frequency,
		CustomDays:  req.CustomDays,
		CustomHours: req.CustomHours,
	}

	occurrences := generateOccurrences(req.StartDate, horizon, rule)

	checkIns := make([]*model.CheckIn, 0, len(occurrences))
	for i, occurrence := range occurrences {
		publicID, err := snowflake.NextID(snowflake.GeneratorTypeCheckIn)
		if err != nil {
			return nil, err
		}

		endDate := horizon
		checkIn := &model.CheckIn{
			PublicID:          publicID,
			UserID:            userID,
			GoalID:            goal.ID,
			Frequency:         frequency,
			CustomDays:        req.CustomDays,
			CustomHours:       req.CustomHours,
			ScheduledDate:     occurrence,
			IsRecurring:       true,
			RecurrenceEndDate: &endDate,
			Status:            model.CheckInStatusScheduled,
			Reminder:          reminder,
		}
		if i+1 < len(occurrences) {
			next := occurrences[i+1]
			checkIn.NextScheduledDate = &next
		}
		checkIns = append(checkIns, checkIn)
	}

	if err := s.checkIns.CreateBatch(ctx, checkIns); err != nil {
		return nil, err
	}

	metrics.RecordCheckInCreated(int64(len(checkIns)))
	logger.Logger.Info("Check-in series created",
		zap.Int64("user_id", userID),
		zap.String("frequency", string(frequency)),
		zap.Int("count", len(checkIns)),
		zap.Time("start", req.StartDate),
		zap.Time("horizon", horizon),
	)

	return checkIns, nil
}

// Complete 完成打卡并投放完成回执
func (s *CheckInService) Complete(ctx context.Context, userID, publicID int64, req dto.CompleteCheckInRequest, now time.Time) (*model.CheckIn, error) {
	checkIn, err := s.ownedCheckIn(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if err := checkIn.Complete(model.Assessment(req.Assessment), now); err != nil {
		return nil, err
	}

	if err := s.checkIns.Save(ctx, checkIn); err != nil {
		return nil, err
	}

	metrics.RecordCheckInCompleted()

	// 回执失败不影响完成操作本身
	if user, userErr := s.users.GetByID(ctx, userID); userErr == nil {
		s.dispatcher.DispatchCompletion(ctx, checkIn, user)
	} else {
		logger.Logger.Warn("Skipping completion notification, user lookup failed",
			zap.Int64("user_id", userID),
			zap.Error(userErr),
		)
	}

	return checkIn, nil
}

// Miss 标记错过
func (s *CheckInService) Miss(ctx context.Context, userID, publicID int64) (*model.CheckIn, error) {
	checkIn, err := s.ownedCheckIn(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if err := checkIn.Miss(); err != nil {
		return nil, err
	}

	if err := s.checkIns.Save(ctx, checkIn); err != nil {
		return nil, err
	}

	metrics.RecordCheckInMissed(1)
	return checkIn, nil
}

// Reschedule 打卡改期
func (s *CheckInService) Reschedule(ctx context.Context, userID, publicID int64, newDate time.Time, now time.Time) (*model.CheckIn, error) {
	if newDate.IsZero() || newDate.Before(now) {
		return nil, pkgerrors.ScheduledDateInvalid
	}

	checkIn, err := s.ownedCheckIn(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if err := checkIn.Reschedule(newDate); err != nil {
		return nil, err
	}

	if err := s.checkIns.Save(ctx, checkIn); err != nil {
		return nil, err
	}

	return checkIn, nil
}

// GetUpcoming 查询即将到期的打卡
func (s *CheckInService) GetUpcoming(ctx context.Context, userID int64, within time.Duration, now time.Time) ([]*model.CheckIn, error) {
	if within <= 0 {
		within = 7 * 24 * time.Hour
	}
	return s.checkIns.FindUpcoming(ctx, userID, now, within)
}

// GetOverdue 查询已过期的打卡
func (s *CheckInService) GetOverdue(ctx context.Context, userID int64, now time.Time) ([]*model.CheckIn, error) {
	return s.checkIns.FindOverdue(ctx, userID, now)
}

// GetByDateRange 按日期范围查询
func (s *CheckInService) GetByDateRange(ctx context.Context, userID int64, from, to time.Time) ([]*model.CheckIn, error) {
	if !to.After(from) {
		return nil, pkgerrors.SeriesRangeInvalid
	}
	return s.checkIns.FindByDateRange(ctx, userID, from, to)
}

// DispatchDueReminders 扫描提醒窗口内的打卡并投放提醒，调度任务调用。
// 返回实际投放的条数。
func (s *CheckInService) DispatchDueReminders(ctx context.Context, now time.Time) (int, error) {
	checkIns, err := s.checkIns.FindDueForReminder(ctx, now, maxReminderAdvance)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, checkIn := range checkIns {
		if !checkIn.ReminderWindowOpen(now) {
			continue
		}

		user, err := s.users.GetByID(ctx, checkIn.UserID)
		if err != nil {
			logger.Logger.Warn("Skipping reminder, user lookup failed",
				zap.Int64("user_id", checkIn.UserID),
				zap.Int64("check_in_id", checkIn.PublicID),
				zap.Error(err),
			)
			continue
		}

		outcomes, err := s.dispatcher.DispatchReminder(ctx, checkIn, user)
		if err != nil {
			logger.Logger.Warn("Reminder dispatch failed",
				zap.Int64("check_in_id", checkIn.PublicID),
				zap.Error(err),
			)
			continue
		}
		if len(outcomes) > 0 {
			dispatched++
		}
	}

	return dispatched, nil
}

// ProcessOverdue 扫描过期打卡：先投放过期提醒，再标记 missed，调度任务调用。
// 返回标记为 missed 的条数。
func (s *CheckInService) ProcessOverdue(ctx context.Context, now time.Time) (int, error) {
	checkIns, err := s.checkIns.FindAllOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	missed := 0
	for _, checkIn := range checkIns {
		if user, userErr := s.users.GetByID(ctx, checkIn.UserID); userErr == nil {
			if _, dispatchErr := s.dispatcher.DispatchOverdue(ctx, checkIn, user, now); dispatchErr != nil {
				logger.Logger.Warn("Overdue dispatch failed, still marking as missed",
					zap.Int64("check_in_id", checkIn.PublicID),
					zap.Error(dispatchErr),
				)
			}
		}

		if err := checkIn.Miss(); err != nil {
			// 读取时已是 completed/cancelled，跳过即可
			continue
		}
		// 带守卫写入：扫描期间被用户完成的行不能被打回 missed
		ok, err := s.checkIns.SaveMissed(ctx, checkIn)
		if err != nil {
			logger.Logger.Error("Failed to persist missed check-in",
				zap.Int64("check_in_id", checkIn.PublicID),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			continue
		}
		missed++
	}

	if missed > 0 {
		metrics.RecordCheckInMissed(int64(missed))
	}
	return missed, nil
}

// Cleanup 把超过保留期仍处于待办状态的打卡补记为 missed，返回补记条数。
// 打卡记录本身不做物理删除，删除属于外部 CRUD 的职责。
func (s *CheckInService) Cleanup(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	cutoff := now.Add(-retention)
	stale, err := s.checkIns.FindAllOverdue(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	var missed int64
	for _, checkIn := range stale {
		if err := checkIn.Miss(); err != nil {
			continue
		}
		ok, err := s.checkIns.SaveMissed(ctx, checkIn)
		if err != nil {
			logger.Logger.Error("Failed to persist missed check-in during cleanup",
				zap.Int64("check_in_id", checkIn.PublicID),
				zap.Error(err),
			)
			continue
		}
		if ok {
			missed++
		}
	}

	if missed > 0 {
		metrics.RecordCheckInMissed(missed)
	}
	return missed, nil
}

func (s *CheckInService) ownedCheckIn(ctx context.Context, userID, publicID int64) (*model.CheckIn, error) {
	checkIn, err := s.checkIns.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if checkIn.UserID != userID {
		return nil, pkgerrors.CheckInNotFound
	}
	return checkIn, nil
}

// generateOccurrences 展开 [start, horizon] 内的排期，最多 maxSeriesOccurrences 条
func generateOccurrences(start, horizon time.Time, rule recurrence.Rule) []time.Time {
	occurrences := make([]time.Time, 0, 8)

	current := start
	for len(occurrences) < maxSeriesOccurrences && !current.After(horizon) {
		occurrences = append(occurrences, current)
		next := recurrence.Next(current, rule)
		if !next.After(current) {
			break
		}
		current = next
	}

	return occurrences
}

// resolveReminder 合并用户入参与默认提醒策略
func resolveReminder(input *dto.ReminderSettingsInput) (model.ReminderSettings, error) {
	reminder := model.DefaultReminderSettings()
	if input == nil {
		return reminder, nil
	}

	if input.Enabled != nil {
		reminder.Enabled = *input.Enabled
	}
	if input.AdvanceTimeMinutes != nil {
		if *input.AdvanceTimeMinutes <= 0 || time.Duration(*input.AdvanceTimeMinutes)*time.Minute > maxReminderAdvance {
			return reminder, pkgerrors.ReminderInvalid
		}
		reminder.AdvanceTimeMinutes = *input.AdvanceTimeMinutes
	}
	if len(input.Methods) > 0 {
		methods := make([]model.ReminderMethod, 0, len(input.Methods))
		for _, m := range input.Methods {
			method := model.ReminderMethod(m)
			switch method {
			case model.ReminderMethodEmail, model.ReminderMethodPush, model.ReminderMethodInApp:
				methods = append(methods, method)
			default:
				return reminder, pkgerrors.ReminderInvalid
			}
		}
		reminder.Methods = methods
	}

	return reminder, nil
}
