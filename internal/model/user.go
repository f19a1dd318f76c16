package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent  = "student"
	RoleEmployer = "employer"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// User carries the signup-time role; the role is set once at registration
// and is never updated afterwards.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       *uint     `json:"role_id"`
	Role         Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Profile      *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Profile struct {
	UserID    uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName  string                      `gorm:"size:100;not null" json:"full_name"`
	Bio       *string                     `gorm:"type:text" json:"bio,omitempty"`
	Interests datatypes.JSONSlice[string] `json:"interests"`
	Phone     *string                     `gorm:"size:30" json:"phone,omitempty"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}
