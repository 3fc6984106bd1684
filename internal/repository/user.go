package repository

import (
	"context"

	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/model"
	"gorm.io/gorm"
)

// UserRepository is the credential store.
type UserRepository struct {
	db *gorm.DB
}

// FindByEmail returns the user with the given email or NOT_FOUND.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, apperror.FromStorage(err, "User")
	}
	return &user, nil
}

// FindByID returns the user with the given id or NOT_FOUND.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, apperror.FromStorage(err, "User")
	}
	return &user, nil
}

// Create provisions a user. A taken email fails with DUPLICATE_ENTRY.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return apperror.FromStorage(r.db.WithContext(ctx).Create(user).Error, "User")
}
