package model

import "roll-call/internal/roll"

// Student 学生表，对应 students
// 点名状态不落库，每次加载名单时均为 unmark
type Student struct {
	ID        int    `gorm:"primaryKey;autoIncrement"   json:"id"`
	FirstName string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null" json:"last_name"`
	SoftDeleteModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// ToRoll 转换为点名核心使用的学生结构
func (s *Student) ToRoll() roll.Student {
	return roll.Student{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		State:     roll.StateUnmarked,
	}
}
