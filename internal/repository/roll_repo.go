package repository

import (
	"context"

	"gorm.io/gorm"

	"roll-call/internal/model"
)

// RollRepository 已完成点名数据访问接口
type RollRepository interface {
	// Create 在同一事务中写入点名记录及全部明细
	Create(ctx context.Context, r *model.Roll) error
	GetByID(ctx context.Context, id string) (*model.Roll, error)
	List(ctx context.Context, staffID string, offset, limit int) ([]model.Roll, int64, error)
}

type rollRepo struct {
	db *gorm.DB
}

// NewRollRepo 创建 RollRepository 实例
func NewRollRepo(db *gorm.DB) RollRepository {
	return &rollRepo{db: db}
}

func (r *rollRepo) Create(ctx context.Context, roll *model.Roll) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries := roll.Entries
		roll.Entries = nil
		if err := tx.Create(roll).Error; err != nil {
			return err
		}
		for i := range entries {
			entries[i].RollID = roll.RollID
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(entries, 200).Error; err != nil {
				return err
			}
		}
		roll.Entries = entries
		return nil
	})
}

func (r *rollRepo) GetByID(ctx context.Context, id string) (*model.Roll, error) {
	var roll model.Roll
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("student_id ASC")
		}).
		Preload("Staff").
		Where("roll_id = ?", id).
		First(&roll).Error
	if err != nil {
		return nil, err
	}
	return &roll, nil
}

// List staffID 为空时返回全部教职工的点名记录
func (r *rollRepo) List(ctx context.Context, staffID string, offset, limit int) ([]model.Roll, int64, error) {
	var (
		rolls []model.Roll
		total int64
	)
	db := r.db.WithContext(ctx).Model(&model.Roll{})
	if staffID != "" {
		db = db.Where("staff_id = ?", staffID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("completed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rolls).Error
	return rolls, total, err
}
