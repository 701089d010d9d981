package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides the common persistence fields of every table.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
