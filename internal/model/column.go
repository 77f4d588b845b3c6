package model

import (
	"time"

	"github.com/google/uuid"
)

// Column — колонка доски. Позиции внутри проекта уникальны и задают
// порядок отрисовки. UpdatedAt служит version stamp для optimistic
// locking при массовом переупорядочивании.
type Column struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Description string
	Identifier  string // display tag (цвет колонки на доске)
	Position    int    `gorm:"not null"`
	ColumnLimit *int
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// DefaultColumns возвращает стартовый набор колонок нового проекта.
func DefaultColumns() []Column {
	return []Column{
		{Name: "Backlog", Description: "This item is yet to start", Position: 1, Identifier: "#1f6feb"},
		{Name: "In progress", Description: "This is actively being worked on", Position: 2, Identifier: "#9e6a03"},
		{Name: "In review", Description: "This has is in review", Position: 3, Identifier: "#8957e5"},
		{Name: "Done", Description: "This has been completed", Position: 4, Identifier: "#238636"},
	}
}
