package repository

import (
	"context"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"gorm.io/gorm"
)

type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

func (r *PartRepository) DB() *gorm.DB {
	return r.db
}

// Create persists a part. The composite unique index on
// (org, class, item, variation) is the concurrency arbiter: callers run
// this inside a transaction and map a duplicate-key failure to a
// uniqueness error.
func (r *PartRepository) Create(ctx context.Context, tx *gorm.DB, part *entity.Part) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(part).Error
}

// FindByID loads a part with its class and primary manufacturer part.
func (r *PartRepository) FindByID(ctx context.Context, id string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).
		Preload("NumberClass").
		Preload("PrimaryManufacturerPart").
		Preload("PrimaryManufacturerPart.Manufacturer").
		First(&part, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// FindByNumber resolves a semi-intelligent (class, item, variation) triple.
func (r *PartRepository) FindByNumber(ctx context.Context, orgID, classID, item, variation string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).
		Preload("NumberClass").
		First(&part, "organization_id = ? AND number_class_id = ? AND number_item = ? AND number_variation = ?",
			orgID, classID, item, variation).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// FindByItem resolves an intelligent-scheme opaque number.
func (r *PartRepository) FindByItem(ctx context.Context, orgID, item string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).
		First(&part, "organization_id = ? AND number_class_id IS NULL AND number_item = ?", orgID, item).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// MaxItem returns the highest numeric number_item in (org, class), 0 when
// none exist. Non-numeric items are ignored by the cast-free max over
// zero-padded strings, so callers rely on uniform padding.
func (r *PartRepository) MaxItem(ctx context.Context, tx *gorm.DB, orgID, classID string) (string, error) {
	if tx == nil {
		tx = r.db
	}
	var max *string
	err := tx.WithContext(ctx).Model(&entity.Part{}).
		Where("organization_id = ? AND number_class_id = ?", orgID, classID).
		Select("MAX(number_item)").Scan(&max).Error
	if err != nil || max == nil {
		return "", err
	}
	return *max, nil
}

// MaxVariation returns the highest number_variation in (org, class, item),
// "" when none exist.
func (r *PartRepository) MaxVariation(ctx context.Context, tx *gorm.DB, orgID, classID, item string) (string, error) {
	if tx == nil {
		tx = r.db
	}
	var max *string
	err := tx.WithContext(ctx).Model(&entity.Part{}).
		Where("organization_id = ? AND number_class_id = ? AND number_item = ?", orgID, classID, item).
		Select("MAX(number_variation)").Scan(&max).Error
	if err != nil || max == nil {
		return "", err
	}
	return *max, nil
}

// ListByOrg pages through an org's parts ordered by number.
func (r *PartRepository) ListByOrg(ctx context.Context, orgID string, offset, limit int) ([]entity.Part, int64, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var total int64
	query := r.db.WithContext(ctx).Model(&entity.Part{}).Where("organization_id = ?", orgID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var parts []entity.Part
	err := query.
		Preload("NumberClass").
		Preload("PrimaryManufacturerPart").
		Order("number_item ASC, number_variation ASC").
		Offset(offset).Limit(limit).
		Find(&parts).Error
	return parts, total, err
}

// Update saves a part.
func (r *PartRepository) Update(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

// Delete removes a part row only; the part service owns the cascade over
// revisions, assemblies, and sourcing rows.
func (r *PartRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Delete(&entity.Part{}, "id = ?", id).Error
}
