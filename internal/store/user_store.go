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

// UserStore 用户查询，通知投放时需要查收件地址和偏好
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmailHash(ctx context.Context, emailHash string) (*model.User, error)
	// FindSummaryRecipients 查询开启了周期汇总的活跃用户
	FindSummaryRecipients(ctx context.Context, weekly bool) ([]*model.User, error)
	Save(ctx context.Context, user *model.User) error
}

type gormUserStore struct {
	db *gorm.DB
}

func NewUserStore() UserStore {
	return &gormUserStore{db: database.DB()}
}

func (s *gormUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.UserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) GetByEmailHash(ctx context.Context, emailHash string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email_hash = ?", emailHash).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.UserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) FindSummaryRecipients(ctx context.Context, weekly bool) ([]*model.User, error) {
	var users []*model.User
	column := "monthly_summary_enabled"
	if weekly {
		column = "weekly_summary_enabled"
	}
	err := s.db.WithContext(ctx).
		Where("status = ?", model.UserStatusActive).
		Where(column+" = ?", true).
		Find(&users).Error
	return users, err
}

func (s *gormUserStore) Save(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Save(user).Error
}
