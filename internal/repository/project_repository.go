package repository

import (
	"context"
	"errors"

	"collabs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create создает проект вместе с записью владельца-коллаборатора (ADMIN)
// и стартовыми колонками одной транзакцией
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		owner := model.Collaborator{
			UserID:    project.OwnerID,
			ProjectID: project.ID,
			Role:      model.RoleAdmin,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		columns := model.DefaultColumns()
		for i := range columns {
			columns[i].ProjectID = project.ID
		}
		return tx.Create(&columns).Error
	})
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// GetByUser возвращает проекты, где пользователь владелец или участник.
// При ownedOnly возвращаются только собственные проекты.
func (r *ProjectRepository) GetByUser(ctx context.Context, userID uuid.UUID, ownedOnly bool, page int) ([]model.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Project{})

	if ownedOnly {
		query = query.Where("owner_id = ?", userID)
	} else {
		member := r.db.Model(&model.Collaborator{}).
			Select("project_id").
			Where("user_id = ?", userID)
		query = query.Where("owner_id = ? OR id IN (?)", userID, member)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []model.Project
	err := query.Offset(Offset(page)).Limit(PageSize).Find(&projects).Error
	return projects, total, err
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Project{}, id).Error
}
