package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Block is a named phase of a
// project; plots reference a block by id.
type Block struct {
	BlockID     uuid.UUID      `gorm:"column:block_id;type:uuid;primaryKey" json:"block_id"`
	ProjectID   uuid.UUID      `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description *string        `gorm:"column:description" json:"description,omitempty"`
	Status      BlockStatus    `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Block) TableName() string {
	return "Blocks"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (b *Block) BeforeCreate(tx *gorm.DB) error {
	if b.BlockID == uuid.Nil {
		b.BlockID = uuid.New()
	}
	return nil
}
