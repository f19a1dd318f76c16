package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Job postings are never hard-deleted; employers edit them in place.
type Job struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID     uuid.UUID                   `gorm:"type:uuid;index;not null" json:"company_id"`
	Company       *Company                    `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Title         string                      `gorm:"size:150;not null" json:"title"`
	Description   string                      `gorm:"type:text" json:"description"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	IsPaid        bool                        `gorm:"default:false" json:"is_paid"`
	StipendAmount int64                       `gorm:"default:0" json:"stipend_amount"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
