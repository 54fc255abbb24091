package repository

import (
	"context"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"gorm.io/gorm"
)

type RevisionRepository struct {
	db *gorm.DB
}

func NewRevisionRepository(db *gorm.DB) *RevisionRepository {
	return &RevisionRepository{db: db}
}

func (r *RevisionRepository) DB() *gorm.DB {
	return r.db
}

// Create persists a revision. Callers creating the revision together with
// its empty assembly pass the enclosing transaction so a revision without
// an assembly is never observable.
func (r *RevisionRepository) Create(ctx context.Context, tx *gorm.DB, rev *entity.PartRevision) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(rev).Error
}

// FindByID loads a revision with its part and class.
func (r *RevisionRepository) FindByID(ctx context.Context, id string) (*entity.PartRevision, error) {
	var rev entity.PartRevision
	err := r.db.WithContext(ctx).
		Preload("Part").
		Preload("Part.NumberClass").
		First(&rev, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// FindLatestByPart returns the newest revision of a part by timestamp.
func (r *RevisionRepository) FindLatestByPart(ctx context.Context, partID string) (*entity.PartRevision, error) {
	var rev entity.PartRevision
	err := r.db.WithContext(ctx).
		Preload("Part").
		Preload("Part.NumberClass").
		Where("part_id = ?", partID).
		Order("timestamp DESC, created_at DESC").
		First(&rev).Error
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// FindByPartAndRevision resolves one revision string of a part.
func (r *RevisionRepository) FindByPartAndRevision(ctx context.Context, partID, revision string) (*entity.PartRevision, error) {
	var rev entity.PartRevision
	err := r.db.WithContext(ctx).
		Preload("Part").
		Preload("Part.NumberClass").
		First(&rev, "part_id = ? AND revision = ?", partID, revision).Error
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// ListByPart returns a part's revision history, oldest first.
func (r *RevisionRepository) ListByPart(ctx context.Context, partID string) ([]entity.PartRevision, error) {
	var revs []entity.PartRevision
	err := r.db.WithContext(ctx).
		Where("part_id = ?", partID).
		Order("timestamp ASC, created_at ASC").
		Find(&revs).Error
	return revs, err
}

// Update saves a revision.
func (r *RevisionRepository) Update(ctx context.Context, rev *entity.PartRevision) error {
	return r.db.WithContext(ctx).Save(rev).Error
}

// Delete removes a revision row.
func (r *RevisionRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Delete(&entity.PartRevision{}, "id = ?", id).Error
}

// ListByPartIDs loads revisions for a set of parts.
func (r *RevisionRepository) ListByPartIDs(ctx context.Context, partIDs []string) ([]entity.PartRevision, error) {
	if len(partIDs) == 0 {
		return nil, nil
	}
	var revs []entity.PartRevision
	err := r.db.WithContext(ctx).Where("part_id IN ?", partIDs).Find(&revs).Error
	return revs, err
}
