package repository

import (
	"context"
	"errors"

	"collabs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollaboratorRepository — durable mapping (user, project) -> role
type CollaboratorRepository struct {
	db *gorm.DB
}

func NewCollaboratorRepository(db *gorm.DB) *CollaboratorRepository {
	return &CollaboratorRepository{db: db}
}

func (r *CollaboratorRepository) Create(ctx context.Context, collaborator *model.Collaborator) error {
	return r.db.WithContext(ctx).Create(collaborator).Error
}

// Find возвращает запись участника или nil, если пользователь не состоит в проекте
func (r *CollaboratorRepository) Find(ctx context.Context, userID, projectID uuid.UUID) (*model.Collaborator, error) {
	var collaborator model.Collaborator
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&collaborator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collaborator, nil
}

func (r *CollaboratorRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID, page int) ([]model.Collaborator, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Collaborator{}).Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var collaborators []model.Collaborator
	err := query.Preload("User").Offset(Offset(page)).Limit(PageSize).Find(&collaborators).Error
	return collaborators, total, err
}

// GetByID возвращает запись участника по ее id или nil, если записи нет
func (r *CollaboratorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Collaborator, error) {
	var collaborator model.Collaborator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&collaborator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collaborator, nil
}

// GetByIDs возвращает участников проекта с указанными id (для проверки assignees)
func (r *CollaboratorRepository) GetByIDs(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) ([]model.Collaborator, error) {
	var collaborators []model.Collaborator
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Find(&collaborators).Error
	return collaborators, err
}

func (r *CollaboratorRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return r.db.WithContext(ctx).
		Model(&model.Collaborator{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (r *CollaboratorRepository) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&model.Collaborator{}).Error
}
