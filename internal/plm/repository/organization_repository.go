package repository

import (
	"context"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) DB() *gorm.DB {
	return r.db
}

// Create persists a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

// FindByID loads an organization with its owner.
func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*entity.Organization, error) {
	var org entity.Organization
	err := r.db.WithContext(ctx).Preload("Owner").First(&org, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Update saves an organization.
func (r *OrganizationRepository) Update(ctx context.Context, org *entity.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// CountParts counts catalog parts in an org. Scheme changes are only legal
// at zero.
func (r *OrganizationRepository) CountParts(ctx context.Context, orgID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Part{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}
