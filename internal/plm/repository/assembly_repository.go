package repository

import (
	"context"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"gorm.io/gorm"
)

type AssemblyRepository struct {
	db *gorm.DB
}

func NewAssemblyRepository(db *gorm.DB) *AssemblyRepository {
	return &AssemblyRepository{db: db}
}

func (r *AssemblyRepository) DB() *gorm.DB {
	return r.db
}

// CreateAssembly persists an (empty) assembly.
func (r *AssemblyRepository) CreateAssembly(ctx context.Context, tx *gorm.DB, asm *entity.Assembly) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(asm).Error
}

// CreateSubpart persists a subpart line.
func (r *AssemblyRepository) CreateSubpart(ctx context.Context, tx *gorm.DB, sp *entity.Subpart) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(sp).Error
}

// UpdateSubpart saves a subpart line.
func (r *AssemblyRepository) UpdateSubpart(ctx context.Context, sp *entity.Subpart) error {
	return r.db.WithContext(ctx).Save(sp).Error
}

// FindSubpart loads one subpart with its target revision.
func (r *AssemblyRepository) FindSubpart(ctx context.Context, id string) (*entity.Subpart, error) {
	var sp entity.Subpart
	err := r.db.WithContext(ctx).
		Preload("PartRevision").
		Preload("PartRevision.Part").
		Preload("PartRevision.Part.NumberClass").
		First(&sp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// Link attaches a subpart to an assembly at the next sequence position.
func (r *AssemblyRepository) Link(ctx context.Context, tx *gorm.DB, link *entity.AssemblySubpart) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(link).Error
}

// Unlink removes the join row and the subpart line itself.
func (r *AssemblyRepository) Unlink(ctx context.Context, assemblyID, subpartID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.AssemblySubpart{}, "assembly_id = ? AND subpart_id = ?", assemblyID, subpartID).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Subpart{}, "id = ?", subpartID).Error
	})
}

// MaxSequence returns the highest sequence in an assembly, 0 when empty.
func (r *AssemblyRepository) MaxSequence(ctx context.Context, tx *gorm.DB, assemblyID string) (int, error) {
	if tx == nil {
		tx = r.db
	}
	var max *int
	err := tx.WithContext(ctx).Model(&entity.AssemblySubpart{}).
		Where("assembly_id = ?", assemblyID).
		Select("MAX(sequence)").Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}

// ListSubparts returns an assembly's subparts in insertion order, with the
// target revision, part, and class preloaded.
func (r *AssemblyRepository) ListSubparts(ctx context.Context, assemblyID string) ([]entity.Subpart, error) {
	var links []entity.AssemblySubpart
	err := r.db.WithContext(ctx).
		Preload("Subpart").
		Preload("Subpart.PartRevision").
		Preload("Subpart.PartRevision.Part").
		Preload("Subpart.PartRevision.Part.NumberClass").
		Where("assembly_id = ?", assemblyID).
		Order("sequence ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	subparts := make([]entity.Subpart, 0, len(links))
	for _, l := range links {
		if l.Subpart != nil {
			subparts = append(subparts, *l.Subpart)
		}
	}
	return subparts, nil
}

// ListLinksBySubpartRevisions returns the join rows of subparts that target
// any of the given revisions. Used by where-used and import cycle checks.
func (r *AssemblyRepository) ListLinksBySubpartRevisions(ctx context.Context, revisionIDs []string) ([]entity.AssemblySubpart, error) {
	if len(revisionIDs) == 0 {
		return nil, nil
	}
	var links []entity.AssemblySubpart
	err := r.db.WithContext(ctx).
		Joins("JOIN subparts ON subparts.id = assembly_subparts.subpart_id").
		Where("subparts.part_revision_id IN ?", revisionIDs).
		Preload("Subpart").
		Find(&links).Error
	return links, err
}

// FindRevisionsByAssemblies maps assembly ids back to the revisions owning
// them.
func (r *AssemblyRepository) FindRevisionsByAssemblies(ctx context.Context, assemblyIDs []string) ([]entity.PartRevision, error) {
	if len(assemblyIDs) == 0 {
		return nil, nil
	}
	var revs []entity.PartRevision
	err := r.db.WithContext(ctx).
		Preload("Part").
		Preload("Part.NumberClass").
		Where("assembly_id IN ?", assemblyIDs).
		Find(&revs).Error
	return revs, err
}

// DeleteAssembly removes an assembly, its join rows, and its subpart lines.
func (r *AssemblyRepository) DeleteAssembly(ctx context.Context, tx *gorm.DB, assemblyID string) error {
	if tx == nil {
		tx = r.db
	}
	var links []entity.AssemblySubpart
	if err := tx.WithContext(ctx).Where("assembly_id = ?", assemblyID).Find(&links).Error; err != nil {
		return err
	}
	for _, l := range links {
		if err := tx.WithContext(ctx).Delete(&entity.Subpart{}, "id = ?", l.SubpartID).Error; err != nil {
			return err
		}
	}
	if err := tx.WithContext(ctx).Delete(&entity.AssemblySubpart{}, "assembly_id = ?", assemblyID).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&entity.Assembly{}, "id = ?", assemblyID).Error
}
