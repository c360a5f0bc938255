package users

import "context"

type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByAccount(ctx context.Context, provider, providerAccountID string) (*User, error)
	LinkAccount(ctx context.Context, account *Account) error
	UpdateProfile(ctx context.Context, id, name, image string) error
	SetPassword(ctx context.Context, id, passwordHash string) error
}
