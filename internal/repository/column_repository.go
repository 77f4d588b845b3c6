package repository

import (
	"context"
	"errors"
	"time"

	"collabs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

// PositionChange — одно изменение в батче переупорядочивания.
// ExpectedVersion — version stamp (updated_at), который клиент видел
// при загрузке; несовпадение означает конкурентное изменение.
type PositionChange struct {
	ColumnID        uuid.UUID
	ExpectedVersion time.Time
	NewPosition     int
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error) {
	var column model.Column
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position").
		Find(&columns).Error
	return columns, err
}

// GetFirst возвращает колонку с position = 1 (куда попадают новые задачи)
func (r *ColumnRepository) GetFirst(ctx context.Context, projectID uuid.UUID) (*model.Column, error) {
	var column model.Column
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND position = ?", projectID, 1).
		First(&column).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) Update(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Save(column).Error
}

func (r *ColumnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Column{}, id).Error
}

func (r *ColumnRepository) GetMaxPosition(ctx context.Context, projectID uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Column{}).
		Select("COALESCE(MAX(position), 0) as max").
		Where("project_id = ?", projectID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

// Reorder применяет батч позиционных изменений одной транзакцией.
// Каждый UPDATE обусловлен совпадением version stamp — compare-and-swap
// на строку. Любое несовпадение откатывает весь батч: частичный
// порядок никогда не становится видимым.
//
// Возвращает ErrColumnNotFound, если колонка из батча удалена, и
// ErrVersionConflict, если ее штамп успел продвинуться.
func (r *ColumnRepository) Reorder(ctx context.Context, projectID uuid.UUID, changes []PositionChange) ([]model.Column, error) {
	var committed []model.Column

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range changes {
			res := tx.Model(&model.Column{}).
				Where("id = ? AND project_id = ? AND updated_at = ?",
					change.ColumnID, projectID, change.ExpectedVersion).
				Update("position", change.NewPosition)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				continue
			}

			// Отличаем удаленную колонку от проигранной гонки
			var count int64
			if err := tx.Model(&model.Column{}).
				Where("id = ? AND project_id = ?", change.ColumnID, projectID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrColumnNotFound
			}
			return ErrVersionConflict
		}

		// Возвращаем зафиксированные строки со свежими штампами,
		// чтобы клиент мог безопасно повторить следующий батч
		return tx.Where("project_id = ?", projectID).
			Order("position").
			Find(&committed).Error
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}
