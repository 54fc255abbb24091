package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"gorm.io/gorm"
)

type SourcingService struct {
	repo *repository.SourcingRepository
}

func NewSourcingService(repo *repository.SourcingRepository) *SourcingService {
	return &SourcingService{repo: repo}
}

// BestSellerPart picks the offer minimizing max(qty, moq) * unit_cost.
// Ties break to the first offer encountered; nil for an empty set. NRE and
// pack rounding do not influence the choice, only the ordered quantity.
func BestSellerPart(sellerParts []entity.SellerPart, qty int) *entity.SellerPart {
	var best *entity.SellerPart
	var bestCost float64
	for i := range sellerParts {
		sp := &sellerParts[i]
		moqQty := qty
		if moqQty < sp.MinimumOrderQuantity {
			moqQty = sp.MinimumOrderQuantity
		}
		cost := float64(moqQty) * sp.UnitCost
		if best == nil || cost < bestCost {
			best = sp
			bestCost = cost
		}
	}
	return best
}

// OrderQuantity is the quantity actually ordered for a requested qty: the
// MOQ floors it, then the pack quantity rounds it up to a full pack.
func OrderQuantity(sp *entity.SellerPart, qty int) int {
	if qty < sp.MinimumOrderQuantity {
		qty = sp.MinimumOrderQuantity
	}
	if mpq := sp.MinimumPackQuantity; mpq > 1 && qty%mpq != 0 {
		qty = (qty/mpq + 1) * mpq
	}
	return qty
}

// GetOrCreateManufacturer resolves a manufacturer by name, creating it on
// first sight.
func (s *SourcingService) GetOrCreateManufacturer(ctx context.Context, orgID, name string) (*entity.Manufacturer, error) {
	m, err := s.repo.FindManufacturerByName(ctx, orgID, name)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find manufacturer: %w", err)
	}
	m = &entity.Manufacturer{
		ID:             newID(),
		OrganizationID: orgID,
		Name:           name,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.repo.CreateManufacturer(ctx, m); err != nil {
		return nil, fmt.Errorf("create manufacturer: %w", err)
	}
	return m, nil
}

// GetOrCreateSeller resolves a seller by case-insensitive name, creating it
// on first sight.
func (s *SourcingService) GetOrCreateSeller(ctx context.Context, orgID, name string) (*entity.Seller, error) {
	sel, err := s.repo.FindSellerByName(ctx, orgID, name)
	if err == nil {
		return sel, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find seller: %w", err)
	}
	sel = &entity.Seller{
		ID:             newID(),
		OrganizationID: orgID,
		Name:           name,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.repo.CreateSeller(ctx, sel); err != nil {
		return nil, fmt.Errorf("create seller: %w", err)
	}
	return sel, nil
}

// AddManufacturerPart records a (part, mpn, manufacturer) identification.
func (s *SourcingService) AddManufacturerPart(ctx context.Context, partID, mpn string, manufacturerID *string) (*entity.ManufacturerPart, error) {
	if mpn == "" {
		return nil, plmerr.Validationf("manufacturer part number is required")
	}
	mp := &entity.ManufacturerPart{
		ID:                     newID(),
		PartID:                 partID,
		ManufacturerPartNumber: mpn,
		ManufacturerID:         manufacturerID,
		CreatedAt:              time.Now(),
		UpdatedAt:              time.Now(),
	}
	if err := s.repo.CreateManufacturerPart(ctx, mp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, plmerr.Uniquenessf("manufacturer part %q already exists for this part and manufacturer", mpn)
		}
		return nil, fmt.Errorf("create manufacturer part: %w", err)
	}
	return mp, nil
}

// SellerPartInput carries the offer terms.
type SellerPartInput struct {
	MinimumOrderQuantity int     `json:"minimum_order_quantity"`
	MinimumPackQuantity  int     `json:"minimum_pack_quantity"`
	UnitCost             float64 `json:"unit_cost"`
	LeadTimeDays         int     `json:"lead_time_days"`
	NreCost              float64 `json:"nre_cost"`
	Ncnr                 bool    `json:"ncnr"`
	DataSource           string  `json:"data_source"`
}

// AddSellerPart records an offer by a seller for a manufacturer part.
func (s *SourcingService) AddSellerPart(ctx context.Context, sellerID, mpartID string, input *SellerPartInput) (*entity.SellerPart, error) {
	if input.MinimumOrderQuantity < 1 {
		return nil, plmerr.Validationf("minimum order quantity must be at least 1")
	}
	if input.MinimumPackQuantity < 1 {
		input.MinimumPackQuantity = 1
	}
	if input.UnitCost < 0 {
		return nil, plmerr.Validationf("unit cost must not be negative")
	}
	dataSource := input.DataSource
	if dataSource == "" {
		dataSource = entity.DataSourceManual
	}
	sp := &entity.SellerPart{
		ID:                   newID(),
		SellerID:             sellerID,
		ManufacturerPartID:   mpartID,
		MinimumOrderQuantity: input.MinimumOrderQuantity,
		MinimumPackQuantity:  input.MinimumPackQuantity,
		UnitCost:             input.UnitCost,
		LeadTimeDays:         input.LeadTimeDays,
		NreCost:              input.NreCost,
		Ncnr:                 input.Ncnr,
		DataSource:           dataSource,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	if err := s.repo.CreateSellerPart(ctx, sp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, plmerr.Uniquenessf("seller part (seller, mpn, moq=%d, unit_cost=%.4f) already exists",
				input.MinimumOrderQuantity, input.UnitCost)
		}
		return nil, fmt.Errorf("create seller part: %w", err)
	}
	return sp, nil
}

// SellerPartsForPart collects every offer across a part's manufacturer
// parts, for the rollup engine.
func (s *SourcingService) SellerPartsForPart(ctx context.Context, partID string) ([]entity.SellerPart, error) {
	return s.repo.ListSellerPartsByPart(ctx, partID)
}
