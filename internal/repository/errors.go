package repository

import "errors"

// Common repository errors
var (
	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrColumnNotFound is returned when a column referenced by an
	// update no longer exists
	ErrColumnNotFound = errors.New("column not found")

	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrVersionConflict is returned when a conditional update lost to a
	// concurrent edit: the row exists but its version stamp has advanced
	ErrVersionConflict = errors.New("version conflict")
)

// PageSize — фиксированный размер страницы для всех списков
const PageSize = 20

func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}
