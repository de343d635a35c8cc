package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Staff   StaffRepository
	Student StudentRepository
	Roll    RollRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Staff:   NewStaffRepo(db),
		Student: NewStudentRepo(db),
		Roll:    NewRollRepo(db),
	}
}
