package models

import "time"

// User is an account that may author articles. Username is not unique.
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:100;not null" json:"username"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Email     *string   `gorm:"size:100" json:"email"`
	Signature *string   `gorm:"size:100" json:"signature"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the singular table name used by the existing schema.
func (User) TableName() string { return "user" }
