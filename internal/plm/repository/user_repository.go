package repository

import (
	"context"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a user.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID loads a user.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateMeta persists a user's meta row. The unique index on user_id keeps
// it at exactly one per user.
func (r *UserRepository) CreateMeta(ctx context.Context, meta *entity.UserMeta) error {
	return r.db.WithContext(ctx).Create(meta).Error
}

// FindMetaByUser loads the meta row for a user.
func (r *UserRepository) FindMetaByUser(ctx context.Context, userID string) (*entity.UserMeta, error) {
	var meta entity.UserMeta
	err := r.db.WithContext(ctx).Preload("Organization").First(&meta, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// UpdateMeta saves a meta row.
func (r *UserRepository) UpdateMeta(ctx context.Context, meta *entity.UserMeta) error {
	return r.db.WithContext(ctx).Save(meta).Error
}
