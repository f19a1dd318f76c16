package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationApplicationReceived = "application_received"
	NotificationApplicationUpdated  = "application_updated"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null" json:"entity_id"` // application id
	EntityType string    `gorm:"type:varchar(50);not null" json:"entity_type"`
	Type       string    `gorm:"type:varchar(50);not null" json:"type"`
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
