package repository

import (
	"context"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"gorm.io/gorm"
)

type PartClassRepository struct {
	db *gorm.DB
}

func NewPartClassRepository(db *gorm.DB) *PartClassRepository {
	return &PartClassRepository{db: db}
}

// Create persists a part class.
func (r *PartClassRepository) Create(ctx context.Context, class *entity.PartClass) error {
	return r.db.WithContext(ctx).Create(class).Error
}

// FindByID loads a part class.
func (r *PartClassRepository) FindByID(ctx context.Context, id string) (*entity.PartClass, error) {
	var class entity.PartClass
	if err := r.db.WithContext(ctx).First(&class, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByCode loads a class by its numeric code within an org.
func (r *PartClassRepository) FindByCode(ctx context.Context, orgID, code string) (*entity.PartClass, error) {
	var class entity.PartClass
	err := r.db.WithContext(ctx).
		First(&class, "organization_id = ? AND code = ?", orgID, code).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByName loads a class by exact name within an org.
func (r *PartClassRepository) FindByName(ctx context.Context, orgID, name string) (*entity.PartClass, error) {
	var class entity.PartClass
	err := r.db.WithContext(ctx).
		First(&class, "organization_id = ? AND name = ?", orgID, name).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// ListByOrg returns all classes of an org ordered by code.
func (r *PartClassRepository) ListByOrg(ctx context.Context, orgID string) ([]entity.PartClass, error) {
	var classes []entity.PartClass
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("code ASC").
		Find(&classes).Error
	return classes, err
}

// Update saves a class.
func (r *PartClassRepository) Update(ctx context.Context, class *entity.PartClass) error {
	return r.db.WithContext(ctx).Save(class).Error
}

// Delete removes a class. Callers must first verify no parts reference it.
func (r *PartClassRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.PartClass{}, "id = ?", id).Error
}

// CountParts counts the parts referencing a class.
func (r *PartClassRepository) CountParts(ctx context.Context, classID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Part{}).Where("number_class_id = ?", classID).Count(&count).Error
	return count, err
}
