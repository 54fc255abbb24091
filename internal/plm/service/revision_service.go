package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bomwerk/bomwerk/internal/plm/attr"
	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/partnumber"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"gorm.io/gorm"
)

type RevisionService struct {
	revisionRepo *repository.RevisionRepository
	partRepo     *repository.PartRepository
	assemblyRepo *repository.AssemblyRepository
}

func NewRevisionService(revisionRepo *repository.RevisionRepository, partRepo *repository.PartRepository,
	assemblyRepo *repository.AssemblyRepository) *RevisionService {
	return &RevisionService{revisionRepo: revisionRepo, partRepo: partRepo, assemblyRepo: assemblyRepo}
}

// GetRevision loads a revision and checks tenancy through its part.
func (s *RevisionService) GetRevision(ctx context.Context, orgID, revisionID string) (*entity.PartRevision, error) {
	rev, err := s.revisionRepo.FindByID(ctx, revisionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, plmerr.NotFoundf("revision %s", revisionID)
		}
		return nil, fmt.Errorf("get revision: %w", err)
	}
	if rev.Part == nil || rev.Part.OrganizationID != orgID {
		return nil, plmerr.NotFoundf("revision %s", revisionID)
	}
	return rev, nil
}

// Latest returns a part's newest revision.
func (s *RevisionService) Latest(ctx context.Context, partID string) (*entity.PartRevision, error) {
	rev, err := s.revisionRepo.FindLatestByPart(ctx, partID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, plmerr.NotFoundf("part %s has no revisions", partID)
		}
		return nil, fmt.Errorf("latest revision: %w", err)
	}
	return rev, nil
}

// History returns a part's revisions, oldest first.
func (s *RevisionService) History(ctx context.Context, partID string) ([]entity.PartRevision, error) {
	return s.revisionRepo.ListByPart(ctx, partID)
}

// SaveSpec validates a revision's specification, normalizes it, regenerates
// both synopses, and saves. A trailing '%' on the tolerance is stripped
// before storage; the rendered forms add it back. Invalid unit or choice
// values come back as warnings.
func (s *RevisionService) SaveSpec(ctx context.Context, rev *entity.PartRevision) ([]string, error) {
	rev.Tolerance = strings.TrimSuffix(strings.TrimSpace(rev.Tolerance), "%")
	if err := validateSpec(rev); err != nil {
		return nil, err
	}
	warnings := attr.CheckChoices(rev)
	rev.DisplayableSynopsis, rev.SearchableSynopsis = BuildSynopses(rev)
	rev.UpdatedAt = time.Now()
	if err := s.revisionRepo.Update(ctx, rev); err != nil {
		return nil, fmt.Errorf("save revision: %w", err)
	}
	return warnings, nil
}

// Release moves a working revision to released and bumps its timestamp so
// it becomes the part's latest.
func (s *RevisionService) Release(ctx context.Context, rev *entity.PartRevision) error {
	if rev.Configuration == entity.ConfigurationReleased {
		return plmerr.Validationf("revision %s is already released", rev.Revision)
	}
	rev.Configuration = entity.ConfigurationReleased
	rev.Timestamp = time.Now()
	rev.UpdatedAt = time.Now()
	if err := s.revisionRepo.Update(ctx, rev); err != nil {
		return fmt.Errorf("release revision: %w", err)
	}
	return nil
}

// Revert moves a released revision back to working.
func (s *RevisionService) Revert(ctx context.Context, rev *entity.PartRevision) error {
	if rev.Configuration == entity.ConfigurationWorking {
		return plmerr.Validationf("revision %s is already working", rev.Revision)
	}
	rev.Configuration = entity.ConfigurationWorking
	rev.Timestamp = time.Now()
	rev.UpdatedAt = time.Now()
	if err := s.revisionRepo.Update(ctx, rev); err != nil {
		return fmt.Errorf("revert revision: %w", err)
	}
	return nil
}

// ForkInput controls revision forking. An empty Revision takes the
// successor of the source's string. CopyAssembly deep-copies the source's
// subpart lines; RepointWhereUsed re-points lines in other parents'
// assemblies from the source revision to the fork.
type ForkInput struct {
	Revision         string `json:"revision"`
	CopyAssembly     bool   `json:"copy_assembly"`
	RepointWhereUsed bool   `json:"repoint_where_used"`
}

// Fork creates a new revision of the source's part. The fork copies every
// specification attribute; the assembly is deep-copied when requested so
// later edits to either revision's lines do not affect the other. The
// whole fork is one transaction.
func (s *RevisionService) Fork(ctx context.Context, source *entity.PartRevision, input *ForkInput) (*entity.PartRevision, error) {
	revision := strings.TrimSpace(input.Revision)
	if revision == "" {
		var err error
		if revision, err = partnumber.NextRevision(source.Revision); err != nil {
			return nil, err
		}
	}
	if len(revision) > partnumber.MaxRevisionLen {
		return nil, plmerr.Validationf("revision %q exceeds %d characters", revision, partnumber.MaxRevisionLen)
	}

	fork := *source
	fork.ID = newID()
	fork.Revision = revision
	fork.Timestamp = time.Now()
	fork.Configuration = entity.ConfigurationWorking
	fork.AssemblyID = nil
	fork.Part = nil
	fork.Assembly = nil
	fork.CreatedAt = time.Now()
	fork.UpdatedAt = time.Now()

	err := s.revisionRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asm := &entity.Assembly{ID: newID(), CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := s.assemblyRepo.CreateAssembly(ctx, tx, asm); err != nil {
			return err
		}
		fork.AssemblyID = &asm.ID

		if err := s.revisionRepo.Create(ctx, tx, &fork); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return plmerr.Uniquenessf("revision %s already exists", revision)
			}
			return err
		}

		if input.CopyAssembly && source.AssemblyID != nil {
			if err := s.copySubparts(ctx, tx, *source.AssemblyID, asm.ID); err != nil {
				return err
			}
		}
		if input.RepointWhereUsed {
			if err := s.repointWhereUsed(ctx, tx, source.ID, fork.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, plmerr.ErrUniqueness) {
			return nil, err
		}
		return nil, fmt.Errorf("fork revision: %w", err)
	}
	fork.Part = source.Part
	return &fork, nil
}

// copySubparts clones every line of src into dst, preserving order. Each
// clone is a fresh subpart row so the two assemblies diverge independently.
func (s *RevisionService) copySubparts(ctx context.Context, tx *gorm.DB, srcAssemblyID, dstAssemblyID string) error {
	subparts, err := s.assemblyRepo.ListSubparts(ctx, srcAssemblyID)
	if err != nil {
		return err
	}
	for i, src := range subparts {
		clone := &entity.Subpart{
			ID:             newID(),
			PartRevisionID: src.PartRevisionID,
			Count:          src.Count,
			Reference:      src.Reference,
			DoNotLoad:      src.DoNotLoad,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if err := s.assemblyRepo.CreateSubpart(ctx, tx, clone); err != nil {
			return err
		}
		link := &entity.AssemblySubpart{
			ID:         newID(),
			AssemblyID: dstAssemblyID,
			SubpartID:  clone.ID,
			Sequence:   i + 1,
			CreatedAt:  time.Now(),
		}
		if err := s.assemblyRepo.Link(ctx, tx, link); err != nil {
			return err
		}
	}
	return nil
}

// repointWhereUsed updates subpart lines across all parent assemblies from
// the old revision to the new one.
func (s *RevisionService) repointWhereUsed(ctx context.Context, tx *gorm.DB, oldRevisionID, newRevisionID string) error {
	return tx.WithContext(ctx).Model(&entity.Subpart{}).
		Where("part_revision_id = ?", oldRevisionID).
		Updates(map[string]interface{}{"part_revision_id": newRevisionID, "updated_at": time.Now()}).Error
}
