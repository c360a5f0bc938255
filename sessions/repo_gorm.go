package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"gorm.io/gorm"
)

var _ Repo = (*GormRepo)(nil)

type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

func (r *GormRepo) Create(ctx context.Context, session *Session) error {
	if session.Token == "" {
		return fmt.Errorf("[sessions Create] token is required")
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("[sessions Create] %w", err)
	}
	return nil
}

func (r *GormRepo) GetByToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperrors.ErrSessionNotFound
	}
	var session Session
	if err := r.db.WithContext(ctx).First(&session, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("[sessions GetByToken] %w", err)
	}
	return &session, nil
}

func (r *GormRepo) Delete(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&Session{}).Error; err != nil {
		return fmt.Errorf("[sessions Delete] %w", err)
	}
	return nil
}

func (r *GormRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires <= ?", before).Delete(&Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("[sessions DeleteExpired] %w", res.Error)
	}
	return res.RowsAffected, nil
}
