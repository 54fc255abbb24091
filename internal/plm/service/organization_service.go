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

type OrganizationService struct {
	orgRepo  *repository.OrganizationRepository
	userRepo *repository.UserRepository
}

func NewOrganizationService(orgRepo *repository.OrganizationRepository, userRepo *repository.UserRepository) *OrganizationService {
	return &OrganizationService{orgRepo: orgRepo, userRepo: userRepo}
}

// CreateOrganizationInput carries a new org's settings. A zero item length
// takes the default; the variation length is a pointer because zero is a
// legal setting (no variation segment) distinct from unset.
type CreateOrganizationInput struct {
	Name               string `json:"name"`
	NumberScheme       string `json:"number_scheme"`
	NumberItemLen      int    `json:"number_item_len"`
	NumberVariationLen *int   `json:"number_variation_len"`
	Currency           string `json:"currency"`
}

// CreateOrganization creates an org owned by ownerID and makes the owner
// an admin member.
func (s *OrganizationService) CreateOrganization(ctx context.Context, ownerID string, input *CreateOrganizationInput) (*entity.Organization, error) {
	if input.Name == "" {
		return nil, plmerr.Validationf("organization name is required")
	}
	scheme := input.NumberScheme
	if scheme == "" {
		scheme = entity.NumberSchemeSemiIntelligent
	}
	if scheme != entity.NumberSchemeSemiIntelligent && scheme != entity.NumberSchemeIntelligent {
		return nil, plmerr.Validationf("unknown number scheme %q", scheme)
	}
	itemLen := input.NumberItemLen
	if itemLen == 0 {
		itemLen = 4
	}
	if itemLen < 3 || itemLen > 10 {
		return nil, plmerr.Validationf("item length %d must be between 3 and 10", itemLen)
	}
	variationLen := 2
	if input.NumberVariationLen != nil {
		variationLen = *input.NumberVariationLen
	}
	if variationLen < 0 || variationLen > 16 {
		return nil, plmerr.Validationf("variation length %d must be between 0 and 16", variationLen)
	}
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	org := &entity.Organization{
		ID:                 newID(),
		Name:               input.Name,
		NumberScheme:       scheme,
		NumberItemLen:      itemLen,
		NumberVariationLen: variationLen,
		OwnerID:            ownerID,
		Currency:           currency,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	meta, err := s.userRepo.FindMetaByUser(ctx, ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		meta = &entity.UserMeta{
			ID:        newID(),
			UserID:    ownerID,
			CreatedAt: time.Now(),
		}
		meta.OrganizationID = &org.ID
		meta.Role = entity.RoleAdmin
		meta.UpdatedAt = time.Now()
		if err := s.userRepo.CreateMeta(ctx, meta); err != nil {
			return nil, fmt.Errorf("create owner meta: %w", err)
		}
		return org, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find owner meta: %w", err)
	}
	meta.OrganizationID = &org.ID
	meta.Role = entity.RoleAdmin
	meta.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateMeta(ctx, meta); err != nil {
		return nil, fmt.Errorf("update owner meta: %w", err)
	}
	return org, nil
}

// GetOrganization loads an org.
func (s *OrganizationService) GetOrganization(ctx context.Context, orgID string) (*entity.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, plmerr.NotFoundf("organization %s", orgID)
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

// ChangeNumberScheme switches an org's numbering scheme. Only legal while
// the catalog is empty: existing numbers cannot be reinterpreted.
func (s *OrganizationService) ChangeNumberScheme(ctx context.Context, org *entity.Organization, scheme string) error {
	if scheme != entity.NumberSchemeSemiIntelligent && scheme != entity.NumberSchemeIntelligent {
		return plmerr.Validationf("unknown number scheme %q", scheme)
	}
	if scheme == org.NumberScheme {
		return nil
	}
	count, err := s.orgRepo.CountParts(ctx, org.ID)
	if err != nil {
		return fmt.Errorf("count parts: %w", err)
	}
	if count > 0 {
		return plmerr.Validationf("cannot change number scheme with %d parts in the catalog", count)
	}
	org.NumberScheme = scheme
	org.UpdatedAt = time.Now()
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return fmt.Errorf("change number scheme: %w", err)
	}
	return nil
}

// MemberOrg resolves the org a user belongs to, with their role.
func (s *OrganizationService) MemberOrg(ctx context.Context, userID string) (*entity.Organization, string, error) {
	meta, err := s.userRepo.FindMetaByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", plmerr.NotFoundf("user %s has no organization", userID)
		}
		return nil, "", fmt.Errorf("member org: %w", err)
	}
	if meta.OrganizationID == nil || meta.Organization == nil {
		return nil, "", plmerr.NotFoundf("user %s has no organization", userID)
	}
	return meta.Organization, meta.Role, nil
}

// SetMemberRole changes a member's role. Admin only; handlers enforce the
// caller's role. The owner's role is immutable so an org always has an
// admin.
func (s *OrganizationService) SetMemberRole(ctx context.Context, orgID, userID, role string) error {
	if role != entity.RoleAdmin && role != entity.RoleViewer {
		return plmerr.Validationf("unknown role %q", role)
	}
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return fmt.Errorf("set member role: %w", err)
	}
	if userID == org.OwnerID {
		return plmerr.Authorizationf("the owner's role cannot be changed")
	}
	meta, err := s.userRepo.FindMetaByUser(ctx, userID)
	if err != nil {
		return plmerr.NotFoundf("user %s", userID)
	}
	if meta.OrganizationID == nil || *meta.OrganizationID != orgID {
		return plmerr.NotFoundf("user %s is not a member", userID)
	}
	meta.Role = role
	meta.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateMeta(ctx, meta); err != nil {
		return fmt.Errorf("set member role: %w", err)
	}
	return nil
}
