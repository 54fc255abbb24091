package repository

import (
	"context"
	"strings"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"gorm.io/gorm"
)

type SourcingRepository struct {
	db *gorm.DB
}

func NewSourcingRepository(db *gorm.DB) *SourcingRepository {
	return &SourcingRepository{db: db}
}

// CreateManufacturer persists a manufacturer.
func (r *SourcingRepository) CreateManufacturer(ctx context.Context, m *entity.Manufacturer) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindManufacturerByName looks a manufacturer up by exact name within an org.
func (r *SourcingRepository) FindManufacturerByName(ctx context.Context, orgID, name string) (*entity.Manufacturer, error) {
	var m entity.Manufacturer
	err := r.db.WithContext(ctx).First(&m, "organization_id = ? AND name = ?", orgID, name).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateManufacturerPart persists a manufacturer part.
func (r *SourcingRepository) CreateManufacturerPart(ctx context.Context, mp *entity.ManufacturerPart) error {
	return r.db.WithContext(ctx).Create(mp).Error
}

// FindManufacturerPart loads one manufacturer part.
func (r *SourcingRepository) FindManufacturerPart(ctx context.Context, id string) (*entity.ManufacturerPart, error) {
	var mp entity.ManufacturerPart
	err := r.db.WithContext(ctx).
		Preload("Manufacturer").
		Preload("SellerParts").
		Preload("SellerParts.Seller").
		First(&mp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &mp, nil
}

// ListManufacturerPartsByPart returns a part's manufacturer parts with
// their seller offers preloaded.
func (r *SourcingRepository) ListManufacturerPartsByPart(ctx context.Context, partID string) ([]entity.ManufacturerPart, error) {
	var mps []entity.ManufacturerPart
	err := r.db.WithContext(ctx).
		Preload("Manufacturer").
		Preload("SellerParts").
		Preload("SellerParts.Seller").
		Where("part_id = ?", partID).
		Order("created_at ASC").
		Find(&mps).Error
	return mps, err
}

// FindManufacturerPartByMPN resolves a manufacturer part number within an
// org, joining through parts for the tenancy check.
func (r *SourcingRepository) FindManufacturerPartByMPN(ctx context.Context, orgID, mpn string) (*entity.ManufacturerPart, error) {
	var mp entity.ManufacturerPart
	err := r.db.WithContext(ctx).
		Joins("JOIN parts ON parts.id = manufacturer_parts.part_id").
		Where("parts.organization_id = ? AND manufacturer_parts.manufacturer_part_number = ?", orgID, mpn).
		Preload("Manufacturer").
		First(&mp).Error
	if err != nil {
		return nil, err
	}
	return &mp, nil
}

// DeleteManufacturerPartsByPart removes a part's manufacturer parts and
// their seller offers. Used by the part delete cascade.
func (r *SourcingRepository) DeleteManufacturerPartsByPart(ctx context.Context, tx *gorm.DB, partID string) error {
	if tx == nil {
		tx = r.db
	}
	var mps []entity.ManufacturerPart
	if err := tx.WithContext(ctx).Where("part_id = ?", partID).Find(&mps).Error; err != nil {
		return err
	}
	for _, mp := range mps {
		if err := tx.WithContext(ctx).Delete(&entity.SellerPart{}, "manufacturer_part_id = ?", mp.ID).Error; err != nil {
			return err
		}
	}
	return tx.WithContext(ctx).Delete(&entity.ManufacturerPart{}, "part_id = ?", partID).Error
}

// CreateSeller persists a seller.
func (r *SourcingRepository) CreateSeller(ctx context.Context, s *entity.Seller) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindSellerByName looks a seller up case-insensitively within an org.
func (r *SourcingRepository) FindSellerByName(ctx context.Context, orgID, name string) (*entity.Seller, error) {
	var s entity.Seller
	err := r.db.WithContext(ctx).
		First(&s, "organization_id = ? AND LOWER(name) = ?", orgID, strings.ToLower(name)).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSellerPart persists a seller offer.
func (r *SourcingRepository) CreateSellerPart(ctx context.Context, sp *entity.SellerPart) error {
	return r.db.WithContext(ctx).Create(sp).Error
}

// ListSellerPartsByManufacturerPart returns the offers for one
// manufacturer part.
func (r *SourcingRepository) ListSellerPartsByManufacturerPart(ctx context.Context, mpartID string) ([]entity.SellerPart, error) {
	var sps []entity.SellerPart
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Where("manufacturer_part_id = ?", mpartID).
		Order("created_at ASC").
		Find(&sps).Error
	return sps, err
}

// ListSellerPartsByPart returns every offer across all of a part's
// manufacturer parts. The rollup engine feeds these to the optimizer.
func (r *SourcingRepository) ListSellerPartsByPart(ctx context.Context, partID string) ([]entity.SellerPart, error) {
	var sps []entity.SellerPart
	err := r.db.WithContext(ctx).
		Joins("JOIN manufacturer_parts ON manufacturer_parts.id = seller_parts.manufacturer_part_id").
		Where("manufacturer_parts.part_id = ?", partID).
		Preload("Seller").
		Preload("ManufacturerPart").
		Preload("ManufacturerPart.Manufacturer").
		Order("seller_parts.created_at ASC").
		Find(&sps).Error
	return sps, err
}

// DeleteSellerPart removes one offer.
func (r *SourcingRepository) DeleteSellerPart(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.SellerPart{}, "id = ?", id).Error
}
