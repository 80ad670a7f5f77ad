package model

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleEmployee UserRole = "EMPLOYEE"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// swagger:model User
type User struct {
	UUIDBase
	Name  string   `gorm:"size:100;not null" json:"name"`
	Email string   `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Role  UserRole `gorm:"size:16;not null;default:EMPLOYEE" json:"role"`
}

func (User) TableName() string {
	return "users"
}
