package fakeuserrepo

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"github.com/jrsteele09/go-signin-gate/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	accounts map[string]string // provider|providerAccountID to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
		accounts: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if _, exists := ur.emailIds[user.Email]; exists && user.Email != "" {
		return errors.New("email already exists")
	}
	u := *user
	ur.users[user.ID] = &u
	if user.Email != "" {
		ur.emailIds[user.Email] = user.ID
	}
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (ur *FakeUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	id, ok := ur.emailIds[email]
	ur.lock.RUnlock()
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.GetByID(ctx, id)
}

func (ur *FakeUserRepo) GetByAccount(ctx context.Context, provider, providerAccountID string) (*users.User, error) {
	ur.lock.RLock()
	id, ok := ur.accounts[provider+"|"+providerAccountID]
	ur.lock.RUnlock()
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return ur.GetByID(ctx, id)
}

func (ur *FakeUserRepo) LinkAccount(_ context.Context, account *users.Account) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := account.Provider + "|" + account.ProviderAccountID
	if _, exists := ur.accounts[key]; exists {
		return errors.New("account already linked")
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	ur.accounts[key] = account.UserID
	return nil
}

func (ur *FakeUserRepo) UpdateProfile(_ context.Context, id, name, image string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Name = name
	u.Image = image
	return nil
}

func (ur *FakeUserRepo) SetPassword(_ context.Context, id, passwordHash string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.HasSetPassword = true
	return nil
}
