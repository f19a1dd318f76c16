package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is owned by a single employer user. The unique index on
// OwnerUserID makes one-company-per-employer a database constraint rather
// than a flow the client has to remember.
type Company struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"owner_user_id"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Location     string    `gorm:"size:150" json:"location"`
	ContactEmail string    `gorm:"size:100" json:"contact_email"`
	ContactPhone string    `gorm:"size:30" json:"contact_phone"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
