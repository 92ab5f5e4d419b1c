package models

// User is the account owner referenced by every user-scoped record.
// Registration and login live in a separate auth service; this table only
// mirrors identities so foreign keys resolve.
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Username string `gorm:"not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	IsActive bool   `gorm:"not null" json:"is_active"`
}
