package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a land development, the top of the inventory hierarchy.
type Project struct {
	ProjectID   uuid.UUID      `gorm:"column:project_id;type:uuid;primaryKey" json:"project_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description *string        `gorm:"column:description" json:"description,omitempty"`
	Status      BlockStatus    `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string {
	return "Projects"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ProjectID == uuid.Nil {
		p.ProjectID = uuid.New()
	}
	return nil
}
