package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bomwerk/bomwerk/internal/plm/attr"
	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/partnumber"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"gorm.io/gorm"
)

type PartService struct {
	partRepo     *repository.PartRepository
	classRepo    *repository.PartClassRepository
	orgRepo      *repository.OrganizationRepository
	revisionRepo *repository.RevisionRepository
	assemblyRepo *repository.AssemblyRepository
	sourcingRepo *repository.SourcingRepository
}

func NewPartService(partRepo *repository.PartRepository, classRepo *repository.PartClassRepository,
	orgRepo *repository.OrganizationRepository, revisionRepo *repository.RevisionRepository,
	assemblyRepo *repository.AssemblyRepository, sourcingRepo *repository.SourcingRepository) *PartService {
	return &PartService{
		partRepo:     partRepo,
		classRepo:    classRepo,
		orgRepo:      orgRepo,
		revisionRepo: revisionRepo,
		assemblyRepo: assemblyRepo,
		sourcingRepo: sourcingRepo,
	}
}

// CreatePartInput carries the identity segments and the initial revision's
// specification. Spec holds the attribute columns; its identity fields are
// ignored.
type CreatePartInput struct {
	ClassID         string               `json:"class_id"`
	NumberItem      string               `json:"number_item"`
	NumberVariation string               `json:"number_variation"`
	Revision        string               `json:"revision"`
	Spec            *entity.PartRevision `json:"spec"`
}

// CreatePart creates a part with its first revision and empty assembly in
// one transaction. Empty item or variation segments are auto-assigned from
// the current maximum within the class. A collision on the full number maps
// to a uniqueness error; warnings carry non-fatal attribute problems.
func (s *PartService) CreatePart(ctx context.Context, org *entity.Organization, input *CreatePartInput) (*entity.Part, *entity.PartRevision, []string, error) {
	spec := input.Spec
	if spec == nil {
		spec = &entity.PartRevision{}
	}
	if err := validateSpec(spec); err != nil {
		return nil, nil, nil, err
	}
	warnings := attr.CheckChoices(spec)

	revision := strings.TrimSpace(input.Revision)
	if revision == "" {
		revision = "1"
	}
	if len(revision) > partnumber.MaxRevisionLen {
		return nil, nil, nil, plmerr.Validationf("revision %q exceeds %d characters", revision, partnumber.MaxRevisionLen)
	}

	part := &entity.Part{
		ID:             newID(),
		OrganizationID: org.ID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	var class *entity.PartClass
	if org.NumberScheme == entity.NumberSchemeIntelligent {
		item := strings.TrimSpace(input.NumberItem)
		if err := validateOpaqueNumber(item); err != nil {
			return nil, nil, nil, err
		}
		part.NumberItem = item
	} else {
		var err error
		class, err = s.classRepo.FindByID(ctx, input.ClassID)
		if err != nil {
			return nil, nil, nil, plmerr.NotFoundf("part class %s", input.ClassID)
		}
		if class.OrganizationID != org.ID {
			return nil, nil, nil, plmerr.NotFoundf("part class %s", input.ClassID)
		}
		part.NumberClassID = &class.ID
	}

	var rev *entity.PartRevision
	err := s.partRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if org.NumberScheme == entity.NumberSchemeSemiIntelligent {
			item, variation, numErr := s.assignNumber(ctx, tx, org, class, input.NumberItem, input.NumberVariation)
			if numErr != nil {
				return numErr
			}
			part.NumberItem = item
			part.NumberVariation = variation
		}
		if createErr := s.partRepo.Create(ctx, tx, part); createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return plmerr.Uniquenessf("part number %s already exists", renderNumber(class, part))
			}
			return createErr
		}

		asm := &entity.Assembly{ID: newID(), CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if asmErr := s.assemblyRepo.CreateAssembly(ctx, tx, asm); asmErr != nil {
			return asmErr
		}

		rev = spec
		rev.ID = newID()
		rev.PartID = part.ID
		rev.Revision = revision
		rev.Timestamp = time.Now()
		rev.Configuration = entity.ConfigurationWorking
		rev.AssemblyID = &asm.ID
		rev.CreatedAt = time.Now()
		rev.UpdatedAt = time.Now()
		rev.DisplayableSynopsis, rev.SearchableSynopsis = BuildSynopses(rev)
		return s.revisionRepo.Create(ctx, tx, rev)
	})
	if err != nil {
		if errors.Is(err, plmerr.ErrUniqueness) || errors.Is(err, plmerr.ErrValidation) || errors.Is(err, plmerr.ErrNotFound) {
			return nil, nil, nil, err
		}
		return nil, nil, nil, fmt.Errorf("create part: %w", err)
	}
	part.NumberClass = class
	return part, rev, warnings, nil
}

// assignNumber fills empty item/variation segments and validates provided
// ones against the org's segment lengths. It runs inside the create
// transaction so two concurrent auto-assigns collide on the unique index
// rather than silently sharing a number.
func (s *PartService) assignNumber(ctx context.Context, tx *gorm.DB, org *entity.Organization, class *entity.PartClass, item, variation string) (string, string, error) {
	item = strings.TrimSpace(item)
	variation = strings.TrimSpace(strings.ToUpper(variation))

	// An explicit variation is held to the org length regardless of how
	// the item segment is assigned.
	if variation != "" && (len(variation) != org.NumberVariationLen || !isAlphanumeric(variation)) {
		return "", "", plmerr.Validationf("variation %q must be %d alphanumeric characters", variation, org.NumberVariationLen)
	}

	if item == "" {
		max, err := s.partRepo.MaxItem(ctx, tx, org.ID, class.ID)
		if err != nil {
			return "", "", err
		}
		n := 0
		if max != "" {
			if n, err = strconv.Atoi(max); err != nil {
				return "", "", plmerr.Validationf("cannot auto-assign after non-numeric item %q", max)
			}
		}
		next := n + 1
		if len(strconv.Itoa(next)) > org.NumberItemLen {
			return "", "", plmerr.Validationf("item numbers for class %s are exhausted", class.Code)
		}
		item = partnumber.PadItem(next, org.NumberItemLen)
		if variation == "" && org.NumberVariationLen > 0 {
			variation = partnumber.PadVariation(1)
		}
		return item, variation, nil
	}

	if len(item) != org.NumberItemLen || !isDigits(item) {
		return "", "", plmerr.Validationf("item %q must be %d digits", item, org.NumberItemLen)
	}
	if variation == "" {
		if org.NumberVariationLen == 0 {
			return item, "", nil
		}
		max, err := s.partRepo.MaxVariation(ctx, tx, org.ID, class.ID, item)
		if err != nil {
			return "", "", err
		}
		if max == "" {
			return item, partnumber.PadVariation(1), nil
		}
		if n, err := strconv.Atoi(max); err == nil {
			next := partnumber.PadVariation(n + 1)
			if len(next) > org.NumberVariationLen {
				return "", "", plmerr.Validationf("variations for item %s are exhausted", item)
			}
			return item, next, nil
		}
		next := partnumber.NextAlpha(max)
		if len(next) > org.NumberVariationLen {
			return "", "", plmerr.Validationf("variations for item %s are exhausted", item)
		}
		return item, next, nil
	}
	return item, variation, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return s != ""
}

func validateOpaqueNumber(item string) error {
	if item == "" {
		return plmerr.Validationf("number is required in the intelligent scheme")
	}
	if len(item) > 64 {
		return plmerr.Validationf("number %q exceeds 64 characters", item)
	}
	for _, r := range item {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r == '-' || r == '_' || r == '.':
		default:
			return plmerr.Validationf("number %q contains invalid character %q", item, r)
		}
	}
	return nil
}

// validateSpec enforces the description-or-value rule and unit pairing.
func validateSpec(spec *entity.PartRevision) error {
	hasValue := spec.Value != nil && spec.ValueUnits != ""
	if strings.TrimSpace(spec.Description) == "" && !hasValue {
		return plmerr.Validationf("either description or value with value units is required")
	}
	if errs := attr.CheckPairs(spec); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return plmerr.Validationf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func renderNumber(class *entity.PartClass, part *entity.Part) string {
	if class == nil {
		return part.NumberItem
	}
	return partnumber.Format(class.Code, part.NumberItem, part.NumberVariation)
}

// GetPart loads a part and checks tenancy.
func (s *PartService) GetPart(ctx context.Context, orgID, partID string) (*entity.Part, error) {
	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, plmerr.NotFoundf("part %s", partID)
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	if part.OrganizationID != orgID {
		return nil, plmerr.NotFoundf("part %s", partID)
	}
	return part, nil
}

// GetPartByNumber resolves a rendered part number under the org's scheme.
// Semi-intelligent numbers parse as class-item-variation; intelligent
// numbers match the stored opaque string exactly.
func (s *PartService) GetPartByNumber(ctx context.Context, org *entity.Organization, number string) (*entity.Part, error) {
	number = strings.TrimSpace(number)
	if org.NumberScheme == entity.NumberSchemeIntelligent {
		part, err := s.partRepo.FindByItem(ctx, org.ID, number)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, plmerr.NotFoundf("part %s", number)
			}
			return nil, fmt.Errorf("get part by number: %w", err)
		}
		return part, nil
	}

	classCode, item, variation, err := partnumber.Parse(number, org.NumberItemLen, org.NumberVariationLen)
	if err != nil {
		return nil, err
	}
	class, err := s.classRepo.FindByCode(ctx, org.ID, classCode)
	if err != nil {
		return nil, plmerr.NotFoundf("part class %s", classCode)
	}
	part, err := s.partRepo.FindByNumber(ctx, org.ID, class.ID, item, variation)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, plmerr.NotFoundf("part %s", number)
		}
		return nil, fmt.Errorf("get part by number: %w", err)
	}
	return part, nil
}

// ListParts pages through an org's catalog.
func (s *PartService) ListParts(ctx context.Context, orgID string, offset, limit int) ([]entity.Part, int64, error) {
	return s.partRepo.ListByOrg(ctx, orgID, offset, limit)
}

// SetPrimaryManufacturerPart points a part at one of its own manufacturer
// parts.
func (s *PartService) SetPrimaryManufacturerPart(ctx context.Context, part *entity.Part, mpartID string) error {
	mp, err := s.sourcingRepo.FindManufacturerPart(ctx, mpartID)
	if err != nil {
		return plmerr.NotFoundf("manufacturer part %s", mpartID)
	}
	if mp.PartID != part.ID {
		return plmerr.Validationf("manufacturer part %s does not belong to part %s", mpartID, part.ID)
	}
	part.PrimaryManufacturerPartID = &mp.ID
	part.UpdatedAt = time.Now()
	if err := s.partRepo.Update(ctx, part); err != nil {
		return fmt.Errorf("set primary manufacturer part: %w", err)
	}
	return nil
}

// DeletePart removes a part and everything hanging off it: revisions,
// their assemblies with all subpart lines, and the sourcing rows. Lines in
// other assemblies that point at the deleted revisions go too.
func (s *PartService) DeletePart(ctx context.Context, part *entity.Part) error {
	revs, err := s.revisionRepo.ListByPart(ctx, part.ID)
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	err = s.partRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		revIDs := make([]string, 0, len(revs))
		for _, rev := range revs {
			revIDs = append(revIDs, rev.ID)
		}
		links, linkErr := s.assemblyRepo.ListLinksBySubpartRevisions(ctx, revIDs)
		if linkErr != nil {
			return linkErr
		}
		for _, l := range links {
			if delErr := tx.Delete(&entity.AssemblySubpart{}, "id = ?", l.ID).Error; delErr != nil {
				return delErr
			}
			if delErr := tx.Delete(&entity.Subpart{}, "id = ?", l.SubpartID).Error; delErr != nil {
				return delErr
			}
		}
		for _, rev := range revs {
			if rev.AssemblyID != nil {
				if asmErr := s.assemblyRepo.DeleteAssembly(ctx, tx, *rev.AssemblyID); asmErr != nil {
					return asmErr
				}
			}
			if revErr := s.revisionRepo.Delete(ctx, tx, rev.ID); revErr != nil {
				return revErr
			}
		}
		if srcErr := s.sourcingRepo.DeleteManufacturerPartsByPart(ctx, tx, part.ID); srcErr != nil {
			return srcErr
		}
		return s.partRepo.Delete(ctx, tx, part.ID)
	})
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	return nil
}
