package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"GoalPulse/internal/model"
	pkgerrors "GoalPulse/pkg/errors"
	"GoalPulse/storage/database"
)

// CheckInStore 打卡记录的持久化入口，所有读写都经过这里
type CheckInStore interface {
	Create(ctx context.Context, checkIn *model.CheckIn) error
	CreateBatch(ctx context.Context, checkIns []*model.CheckIn) error
	Save(ctx context.Context, checkIn *model.CheckIn) error

	GetByID(ctx context.Context, id int64) (*model.CheckIn, error)
	GetByPublicID(ctx context.Context, publicID int64) (*model.CheckIn, error)

	// FindUpcoming 查询 [now, now+within] 内的待执行打卡
	FindUpcoming(ctx context.Context, userID int64, now time.Time, within time.Duration) ([]*model.CheckIn, error)
	// FindOverdue 查询已过期且还未完成的打卡
	FindOverdue(ctx context.Context, userID int64, now time.Time) ([]*model.CheckIn, error)
	FindByDateRange(ctx context.Context, userID int64, from, to time.Time) ([]*model.CheckIn, error)
	FindByGoal(ctx context.Context, userID, goalID int64) ([]*model.CheckIn, error)

	// FindDueForReminder 扫描提醒窗口内的打卡（跨用户，调度任务用）
	FindDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]*model.CheckIn, error)
	// FindAllOverdue 扫描所有用户的过期打卡（调度任务用）
	FindAllOverdue(ctx context.Context, now time.Time) ([]*model.CheckIn, error)
	CountByStatus(ctx context.Context, userID int64, status model.CheckInStatus, from, to time.Time) (int64, error)

	// SaveMissed 带状态守卫落库 missed。只在行仍处于 scheduled/pending 时写入，
	// 扫描期间被用户完成的行不会被覆盖，返回是否真正写入
	SaveMissed(ctx context.Context, checkIn *model.CheckIn) (bool, error)
}

type gormCheckInStore struct {
	db *gorm.DB
}

func NewCheckInStore() CheckInStore {
	return &gormCheckInStore{db: database.DB()}
}

func (s *gormCheckInStore) Create(ctx context.Context, checkIn *model.CheckIn) error {
	return s.db.WithContext(ctx).Create(checkIn).Error
}

func (s *gormCheckInStore) CreateBatch(ctx context.Context, checkIns []*model.CheckIn) error {
	if len(checkIns) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(checkIns, 100).Error
}

func (s *gormCheckInStore) Save(ctx context.Context, checkIn *model.CheckIn) error {
	return s.db.WithContext(ctx).Save(checkIn).Error
}

func (s *gormCheckInStore) GetByID(ctx context.Context, id int64) (*model.CheckIn, error) {
	var checkIn model.CheckIn
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&checkIn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.CheckInNotFound
	}
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (s *gormCheckInStore) GetByPublicID(ctx context.Context, publicID int64) (*model.CheckIn, error) {
	var checkIn model.CheckIn
	err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&checkIn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.CheckInNotFound
	}
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (s *gormCheckInStore) FindUpcoming(ctx context.Context, userID int64, now time.Time, within time.Duration) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status IN ?", []model.CheckInStatus{model.CheckInStatusScheduled, model.CheckInStatusPending}).
		Where("scheduled_date >= ? AND scheduled_date <= ?", now, now.Add(within)).
		Order("scheduled_date ASC").
		Find(&checkIns).Error
	return checkIns, err
}

func (s *gormCheckInStore) FindOverdue(ctx context.Context, userID int64, now time.Time) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status IN ?", []model.CheckInStatus{model.CheckInStatusScheduled, model.CheckInStatusPending}).
		Where("scheduled_date < ?", now).
		Order("scheduled_date ASC").
		Find(&checkIns).Error
	return checkIns, err
}

func (s *gormCheckInStore) FindByDateRange(ctx context.Context, userID int64, from, to time.Time) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("scheduled_date >= ? AND scheduled_date <= ?", from, to).
		Order("scheduled_date ASC").
		Find(&checkIns).Error
	return checkIns, err
}

func (s *gormCheckInStore) FindByGoal(ctx context.Context, userID, goalID int64) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND goal_id = ?", userID, goalID).
		Order("scheduled_date ASC").
		Find(&checkIns).Error
	return checkIns, err
}

func (s *gormCheckInStore) FindDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	// 提醒窗口由每条记录自己的 advance_time 决定，这里先按最大窗口粗筛，
	// 精确判断交给 ReminderWindowOpen
	err := s.db.WithContext(ctx).
		Where("status IN ?", []model.CheckInStatus{model.CheckInStatusScheduled, model.CheckInStatusPending}).
		Where("scheduled_date >= ? AND scheduled_date <= ?", now, now.Add(window)).
		Order("scheduled_date ASC").
		Find(&checkIns).Error
	return checkIns, err
}

func (s *gormCheckInStore) FindAllOverdue(ctx context.Context, now time.Time) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	err := s.db.WithContext(ctx).
		Where("status IN ?", []model.CheckInStatus{model.CheckInStatusScheduled, model.CheckInStatusPending}).
		Where("scheduled_date < ?", now).
		Order("scheduled_date ASC").
		Find(&checkIns).Error
	return checkIns, err
}

func (s *gormCheckInStore) CountByStatus(ctx context.Context, userID int64, status model.CheckInStatus, from, to time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.CheckIn{}).
		Where("user_id = ? AND status = ?", userID, status).
		Where("scheduled_date >= ? AND scheduled_date <= ?", from, to).
		Count(&count).Error
	return count, err
}

func (s *gormCheckInStore) SaveMissed(ctx context.Context, checkIn *model.CheckIn) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.CheckIn{}).
		Where("id = ?", checkIn.ID).
		Where("status IN ?", []model.CheckInStatus{model.CheckInStatusScheduled, model.CheckInStatusPending}).
		Updates(map[string]interface{}{
			"status":              model.CheckInStatusMissed,
			"next_scheduled_date": checkIn.NextScheduledDate,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
