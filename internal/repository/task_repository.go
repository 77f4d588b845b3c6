package repository

import (
	"context"
	"errors"

	"collabs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID загружает задачу вместе с колонкой, чтобы вызывающий знал проект
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Preload("Column").Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByProjectID возвращает задачи проекта с пагинацией и опциональным
// фильтром по колонке
func (r *TaskRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID, columnID *uuid.UUID, page int) ([]model.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{}).
		Joins("JOIN columns ON columns.id = tasks.column_id").
		Where("columns.project_id = ?", projectID)

	if columnID != nil {
		query = query.Where("tasks.column_id = ?", *columnID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	err := query.Offset(Offset(page)).Limit(PageSize).Find(&tasks).Error
	return tasks, total, err
}

// Update сохраняет поля самой задачи; связи (колонка, assignees) не
// трогаются, перенос между колонками меняет только column_id
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Task{}, id).Error
}
