package repository

import (
	"context"

	"gorm.io/gorm"

	"roll-call/internal/model"
)

// StudentRepository 学生名单数据访问接口
type StudentRepository interface {
	List(ctx context.Context) ([]model.Student, error)
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, students []model.Student) error
	DeleteAll(ctx context.Context) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) List(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).Order("id ASC").Find(&students).Error
	return students, err
}

func (r *studentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).Count(&n).Error
	return n, err
}

func (r *studentRepo) CreateBatch(ctx context.Context, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(students, 100).Error
}

// DeleteAll 软删除全部学生（重新生成名单前调用）
func (r *studentRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&model.Student{}).Error
}
