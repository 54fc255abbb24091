package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"gorm.io/gorm"
)

type AssemblyService struct {
	assemblyRepo *repository.AssemblyRepository
	revisionRepo *repository.RevisionRepository
}

func NewAssemblyService(assemblyRepo *repository.AssemblyRepository, revisionRepo *repository.RevisionRepository) *AssemblyService {
	return &AssemblyService{assemblyRepo: assemblyRepo, revisionRepo: revisionRepo}
}

// SubpartInput carries one assembly line.
type SubpartInput struct {
	PartRevisionID string `json:"part_revision_id"`
	Count          int    `json:"count"`
	Reference      string `json:"reference"`
	DoNotLoad      bool   `json:"do_not_load"`
}

// ValidateSubpartCount enforces the count/reference contract: an empty
// reference means count 1; otherwise the designator count must equal count.
func ValidateSubpartCount(count int, reference string) error {
	if count < 1 {
		return plmerr.Validationf("count must be at least 1, got %d", count)
	}
	refs := SplitReferences(reference)
	if len(refs) == 0 {
		if count != 1 {
			return plmerr.Validationf("count must be 1 when no reference designators are given, got %d", count)
		}
		return nil
	}
	if len(refs) != count {
		return plmerr.Validationf("%d reference designators do not match count %d", len(refs), count)
	}
	return nil
}

// SplitReferences splits a comma-separated designator string, dropping
// blanks.
func SplitReferences(reference string) []string {
	if strings.TrimSpace(reference) == "" {
		return nil
	}
	var out []string
	for _, r := range strings.Split(reference, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// Reachable reports whether target is reachable from start by following
// assemblies downward. Used for the cycle rule.
func (s *AssemblyService) Reachable(ctx context.Context, start *entity.PartRevision, targetID string) (bool, error) {
	records, err := s.IndentedBom(ctx, start, 1)
	if err != nil && !errors.Is(err, plmerr.ErrGraphRecursion) {
		return false, err
	}
	for _, rec := range records {
		if rec.PartRevision.ID == targetID {
			return true, nil
		}
	}
	return false, nil
}

// AddSubpart adds a line under parent, rejecting self-reference and
// indirect cycles. A line targeting the same revision with the same
// do-not-load flag merges deterministically: counts add, references join.
// The merge runs in one transaction so concurrent adds serialize on the
// unique (assembly, subpart) key.
func (s *AssemblyService) AddSubpart(ctx context.Context, parent *entity.PartRevision, input *SubpartInput) (*entity.Subpart, error) {
	if parent.AssemblyID == nil {
		return nil, plmerr.Validationf("revision %s has no assembly", parent.ID)
	}
	if err := ValidateSubpartCount(input.Count, input.Reference); err != nil {
		return nil, err
	}

	child, err := s.revisionRepo.FindByID(ctx, input.PartRevisionID)
	if err != nil {
		return nil, plmerr.NotFoundf("sub-part revision %s", input.PartRevisionID)
	}
	if child.ID == parent.ID {
		return nil, plmerr.Cyclef("a revision cannot contain itself")
	}
	reachable, err := s.Reachable(ctx, child, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("cycle check: %w", err)
	}
	if reachable {
		return nil, plmerr.Cyclef("adding %s under %s would create a loop", child.ID, parent.ID)
	}

	var result *entity.Subpart
	err = s.assemblyRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, findErr := s.findMergeTarget(ctx, tx, *parent.AssemblyID, child.ID, input.DoNotLoad)
		if findErr != nil {
			return findErr
		}
		if existing != nil {
			existing.Count += input.Count
			existing.Reference = joinReferences(existing.Reference, input.Reference)
			existing.UpdatedAt = time.Now()
			if saveErr := tx.Save(existing).Error; saveErr != nil {
				return saveErr
			}
			result = existing
			return nil
		}

		sp := &entity.Subpart{
			ID:             newID(),
			PartRevisionID: child.ID,
			Count:          input.Count,
			Reference:      input.Reference,
			DoNotLoad:      input.DoNotLoad,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if createErr := s.assemblyRepo.CreateSubpart(ctx, tx, sp); createErr != nil {
			return createErr
		}
		seq, seqErr := s.assemblyRepo.MaxSequence(ctx, tx, *parent.AssemblyID)
		if seqErr != nil {
			return seqErr
		}
		link := &entity.AssemblySubpart{
			ID:         newID(),
			AssemblyID: *parent.AssemblyID,
			SubpartID:  sp.ID,
			Sequence:   seq + 1,
			CreatedAt:  time.Now(),
		}
		if linkErr := s.assemblyRepo.Link(ctx, tx, link); linkErr != nil {
			return linkErr
		}
		result = sp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add subpart: %w", err)
	}
	return result, nil
}

func (s *AssemblyService) findMergeTarget(ctx context.Context, tx *gorm.DB, assemblyID, revisionID string, doNotLoad bool) (*entity.Subpart, error) {
	var sp entity.Subpart
	err := tx.WithContext(ctx).
		Joins("JOIN assembly_subparts ON assembly_subparts.subpart_id = subparts.id").
		Where("assembly_subparts.assembly_id = ? AND subparts.part_revision_id = ? AND subparts.do_not_load = ?",
			assemblyID, revisionID, doNotLoad).
		First(&sp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func joinReferences(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + ", " + b
	}
}

// RemoveSubpart deletes a line from parent's assembly.
func (s *AssemblyService) RemoveSubpart(ctx context.Context, parent *entity.PartRevision, subpartID string) error {
	if parent.AssemblyID == nil {
		return plmerr.Validationf("revision %s has no assembly", parent.ID)
	}
	if err := s.assemblyRepo.Unlink(ctx, *parent.AssemblyID, subpartID); err != nil {
		return fmt.Errorf("remove subpart: %w", err)
	}
	return nil
}

// Subparts lists parent's assembly lines in insertion order.
func (s *AssemblyService) Subparts(ctx context.Context, parent *entity.PartRevision) ([]entity.Subpart, error) {
	if parent.AssemblyID == nil {
		return nil, nil
	}
	return s.assemblyRepo.ListSubparts(ctx, *parent.AssemblyID)
}

// WhereUsed returns the revisions whose assemblies transitively contain
// the given revision, breadth-first upward.
func (s *AssemblyService) WhereUsed(ctx context.Context, revisionID string) ([]entity.PartRevision, error) {
	seen := map[string]bool{revisionID: true}
	frontier := []string{revisionID}
	var out []entity.PartRevision

	for len(frontier) > 0 {
		links, err := s.assemblyRepo.ListLinksBySubpartRevisions(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("where-used links: %w", err)
		}
		assemblyIDs := make([]string, 0, len(links))
		for _, l := range links {
			assemblyIDs = append(assemblyIDs, l.AssemblyID)
		}
		parents, err := s.assemblyRepo.FindRevisionsByAssemblies(ctx, assemblyIDs)
		if err != nil {
			return nil, fmt.Errorf("where-used parents: %w", err)
		}
		frontier = frontier[:0]
		for _, p := range parents {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
			frontier = append(frontier, p.ID)
		}
	}
	return out, nil
}

// WhereUsedPart unions where-used over all revisions of a part.
func (s *AssemblyService) WhereUsedPart(ctx context.Context, partID string) ([]entity.PartRevision, error) {
	revs, err := s.revisionRepo.ListByPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	seen := map[string]bool{}
	var out []entity.PartRevision
	for _, rev := range revs {
		parents, err := s.WhereUsed(ctx, rev.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range parents {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// DuplicateReferences scans an assembly's lines for designators used more
// than once. Duplicates are a warning, not an error.
func DuplicateReferences(subparts []entity.Subpart) []string {
	counts := map[string]int{}
	var orderedRefs []string
	for _, sp := range subparts {
		for _, ref := range SplitReferences(sp.Reference) {
			if counts[ref] == 0 {
				orderedRefs = append(orderedRefs, ref)
			}
			counts[ref]++
		}
	}
	var dups []string
	for _, ref := range orderedRefs {
		if counts[ref] > 1 {
			dups = append(dups, ref)
		}
	}
	return dups
}
