package model

import (
	"time"

	"roll-call/internal/roll"
)

// Roll 已完成的一次点名，对应 rolls
type Roll struct {
	RollID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"roll_id"`
	StaffID      string      `gorm:"type:uuid;not null;index"                       json:"staff_id"`
	CompletedAt  time.Time   `gorm:"not null"                                       json:"completed_at"`
	TotalCount   int         `gorm:"not null;default:0"                             json:"total_count"`
	PresentCount int         `gorm:"not null;default:0"                             json:"present_count"`
	LateCount    int         `gorm:"not null;default:0"                             json:"late_count"`
	AbsentCount  int         `gorm:"not null;default:0"                             json:"absent_count"`
	CreatedAt    time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	Entries      []RollEntry `gorm:"foreignKey:RollID;references:RollID"            json:"entries,omitempty"`
	Staff        *Staff      `gorm:"foreignKey:StaffID;references:StaffID"          json:"staff,omitempty"`
}

// TableName 指定表名
func (Roll) TableName() string { return "rolls" }

// Counts 转换为汇总计数
func (r *Roll) Counts() roll.Counts {
	return roll.Counts{
		All:     r.TotalCount,
		Present: r.PresentCount,
		Late:    r.LateCount,
		Absent:  r.AbsentCount,
	}
}

// RollEntry 一次点名中单个学生的结果，对应 roll_entries
// 冗余保存姓名，学生记录后续变更不影响历史点名
type RollEntry struct {
	RollEntryID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"roll_entry_id"`
	RollID      string     `gorm:"type:uuid;not null;index"                       json:"roll_id"`
	StudentID   int        `gorm:"not null"                                       json:"student_id"`
	FirstName   string     `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName    string     `gorm:"type:varchar(100);not null"                     json:"last_name"`
	RollState   roll.State `gorm:"type:varchar(16);not null"                      json:"roll_state"`
}

// TableName 指定表名
func (RollEntry) TableName() string { return "roll_entries" }
