package users

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"gorm.io/gorm"
)

var _ UserRepo = (*GormRepo)(nil)

// GormRepo stores users and their linked accounts in a SQL database.
type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

func (r *GormRepo) Create(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("[users Create] %w", err)
	}
	return nil
}

func (r *GormRepo) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *GormRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *GormRepo) GetByAccount(ctx context.Context, provider, providerAccountID string) (*User, error) {
	var account Account
	err := r.db.WithContext(ctx).
		First(&account, "provider = ? AND provider_account_id = ?", provider, providerAccountID).Error
	if err != nil {
		return nil, translate(err, apperrors.ErrAccountNotFound)
	}
	return r.GetByID(ctx, account.UserID)
}

func (r *GormRepo) LinkAccount(ctx context.Context, account *Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("[users LinkAccount] %w", err)
	}
	return nil
}

func (r *GormRepo) UpdateProfile(ctx context.Context, id, name, image string) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "image": image})
	if res.Error != nil {
		return fmt.Errorf("[users UpdateProfile] %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *GormRepo) SetPassword(ctx context.Context, id, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"password_hash": passwordHash, "has_set_password": true})
	if res.Error != nil {
		return fmt.Errorf("[users SetPassword] %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func translate(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
