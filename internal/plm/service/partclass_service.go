package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"gorm.io/gorm"
)

type PartClassService struct {
	classRepo *repository.PartClassRepository
}

func NewPartClassService(classRepo *repository.PartClassRepository) *PartClassService {
	return &PartClassService{classRepo: classRepo}
}

// CreatePartClassInput carries a new class. Code accepts a bare positive
// integer and is stored zero-padded to three digits.
type CreatePartClassInput struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Comment       string `json:"comment"`
	MouserEnabled bool   `json:"mouser_enabled"`
}

// NormalizeClassCode validates a class code and zero-pads it to the fixed
// three-digit width.
func NormalizeClassCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	n, err := strconv.Atoi(code)
	if err != nil || n < 0 {
		return "", plmerr.Validationf("class code %q must be a positive integer", code)
	}
	if n > 999 {
		return "", plmerr.Validationf("class code %q exceeds %d digits", code, entity.NumberClassCodeLen)
	}
	return fmt.Sprintf("%0*d", entity.NumberClassCodeLen, n), nil
}

// CreatePartClass creates a class; code and the (code, name) pair are
// unique within the org.
func (s *PartClassService) CreatePartClass(ctx context.Context, orgID string, input *CreatePartClassInput) (*entity.PartClass, error) {
	code, err := NormalizeClassCode(input.Code)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, plmerr.Validationf("class name is required")
	}
	class := &entity.PartClass{
		ID:             newID(),
		OrganizationID: orgID,
		Code:           code,
		Name:           name,
		Comment:        input.Comment,
		MouserEnabled:  input.MouserEnabled,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, plmerr.Uniquenessf("part class %s already exists", code)
		}
		return nil, fmt.Errorf("create part class: %w", err)
	}
	return class, nil
}

// GetPartClass loads a class and checks tenancy.
func (s *PartClassService) GetPartClass(ctx context.Context, orgID, classID string) (*entity.PartClass, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, plmerr.NotFoundf("part class %s", classID)
		}
		return nil, fmt.Errorf("get part class: %w", err)
	}
	if class.OrganizationID != orgID {
		return nil, plmerr.NotFoundf("part class %s", classID)
	}
	return class, nil
}

// ListPartClasses returns an org's classes ordered by code.
func (s *PartClassService) ListPartClasses(ctx context.Context, orgID string) ([]entity.PartClass, error) {
	return s.classRepo.ListByOrg(ctx, orgID)
}

// UpdatePartClass saves name, comment, and the pricing-feed flag. The code
// is immutable once created; part numbers embed it.
func (s *PartClassService) UpdatePartClass(ctx context.Context, class *entity.PartClass, name, comment string, mouserEnabled bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return plmerr.Validationf("class name is required")
	}
	class.Name = name
	class.Comment = comment
	class.MouserEnabled = mouserEnabled
	class.UpdatedAt = time.Now()
	if err := s.classRepo.Update(ctx, class); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return plmerr.Uniquenessf("part class named %q already exists", name)
		}
		return fmt.Errorf("update part class: %w", err)
	}
	return nil
}

// DeletePartClass removes a class, refusing while parts still reference it.
func (s *PartClassService) DeletePartClass(ctx context.Context, class *entity.PartClass) error {
	count, err := s.classRepo.CountParts(ctx, class.ID)
	if err != nil {
		return fmt.Errorf("count class parts: %w", err)
	}
	if count > 0 {
		return plmerr.Validationf("class %s still has %d parts", class.Code, count)
	}
	if err := s.classRepo.Delete(ctx, class.ID); err != nil {
		return fmt.Errorf("delete part class: %w", err)
	}
	return nil
}
