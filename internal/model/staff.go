package model

// 教职工角色
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Staff 教职工账号表，对应 staff
type Staff struct {
	StaffID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"staff_id"`
	Username     string `gorm:"type:varchar(64);uniqueIndex;not null"          json:"username"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	PasswordHash string `gorm:"type:varchar(100);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:staff"        json:"role"`
	BaseModel
}

// TableName 指定表名
func (Staff) TableName() string { return "staff" }
