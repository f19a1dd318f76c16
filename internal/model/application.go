package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
)

// Application is unique per (job, student). The composite unique index lets
// the insert itself detect a duplicate, so two concurrent submissions cannot
// both land even though they both pass the pre-check.
type Application struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_student" json:"job_id"`
	Job           *Job      `gorm:"foreignKey:JobID" json:"job,omitempty"`
	StudentUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_student" json:"student_user_id"`
	Student       *User     `gorm:"foreignKey:StudentUserID" json:"student,omitempty"`
	Note          string    `gorm:"type:text" json:"note"`
	ContactEmail  string    `gorm:"size:100" json:"contact_email"`
	ContactPhone  string    `gorm:"size:30" json:"contact_phone"`
	Status        string    `gorm:"size:20;not null;default:submitted" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
