package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"GoalPulse/internal/model"
	pkgerrors "GoalPulse/pkg/errors"
	"GoalPulse/storage/database"
)

// GoalStore 目标的持久化入口
type GoalStore interface {
	Create(ctx context.Context, goal *model.Goal) error
	Save(ctx context.Context, goal *model.Goal) error
	GetByID(ctx context.Context, id int64) (*model.Goal, error)
	GetByPublicID(ctx context.Context, publicID int64) (*model.Goal, error)
	FindByUser(ctx context.Context, userID int64, status model.GoalStatus) ([]*model.Goal, error)
}

type gormGoalStore struct {
	db *gorm.DB
}

func NewGoalStore() GoalStore {
	return &gormGoalStore{db: database.DB()}
}

func (s *gormGoalStore) Create(ctx context.Context, goal *model.Goal) error {
	return s.db.WithContext(ctx).Create(goal).Error
}

func (s *gormGoalStore) Save(ctx context.Context, goal *model.Goal) error {
	return s.db.WithContext(ctx).Save(goal).Error
}

func (s *gormGoalStore) GetByID(ctx context.Context, id int64) (*model.Goal, error) {
	var goal model.Goal
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.GoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *gormGoalStore) GetByPublicID(ctx context.Context, publicID int64) (*model.Goal, error) {
	var goal model.Goal
	err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.GoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *gormGoalStore) FindByUser(ctx context.Context, userID int64, status model.GoalStatus) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&goals).Error
	return goals, err
}
