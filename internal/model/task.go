package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ColumnID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Column    Column         `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE"`
	Assignees []Collaborator `gorm:"many2many:task_assignees"`
}
