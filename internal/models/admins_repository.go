package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrAdminNotFound = errors.New("admin user not found")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AdminsRepository struct {
	db *gorm.DB
}

func NewAdminsRepository(db *gorm.DB) *AdminsRepository {
	return &AdminsRepository{db: db}
}

func (r *AdminsRepository) GetByUsername(ctx context.Context, username string) (*AdminUser, error) {
	var u AdminUser
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate returns the admin if username exists and pw matches its hash.
func (r *AdminsRepository) Authenticate(ctx context.Context, username, pw string) (*AdminUser, error) {
	u, err := r.GetByUsername(ctx, username)
	if errors.Is(err, ErrAdminNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.HashPassword, pw) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SetPassword creates the admin or replaces its password hash.
// created reports whether a new row was inserted.
func (r *AdminsRepository) SetPassword(ctx context.Context, username, pw string) (u *AdminUser, created bool, err error) {
	hash, err := HashPassword(pw)
	if err != nil {
		return nil, false, err
	}
	u, err = r.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrAdminNotFound):
		u = &AdminUser{Username: username, HashPassword: hash}
		if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
			return nil, false, err
		}
		return u, true, nil
	case err != nil:
		return nil, false, err
	}
	u.HashPassword = hash
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, false, err
	}
	return u, false, nil
}
