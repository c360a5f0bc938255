package users

import (
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProviderGoogle identifies accounts linked through Google sign-in.
const ProviderGoogle = "google"

// MinPasswordLength is the shortest password accepted by SetPassword.
const MinPasswordLength = 6

type User struct {
	ID             string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email          string     `json:"email,omitempty" gorm:"uniqueIndex"`
	Name           string     `json:"name,omitempty"`
	Image          string     `json:"image,omitempty"`
	EmailVerified  *time.Time `json:"email_verified,omitempty"`
	PasswordHash   string     `json:"-"`
	HasSetPassword bool       `json:"has_set_password" gorm:"not null;default:false"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Account links a user to an identity at an OAuth provider.
type Account struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string    `json:"user_id" gorm:"index;not null"`
	Provider          string    `json:"provider" gorm:"uniqueIndex:idx_provider_account;not null"`
	ProviderAccountID string    `json:"provider_account_id" gorm:"uniqueIndex:idx_provider_account;not null"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// Models lists the tables owned by this package for migrations.
func Models() []interface{} {
	return []interface{}{&User{}, &Account{}}
}

// ValidatePassword enforces the minimum length rule.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.ErrPasswordTooShort
	}
	return nil
}

func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	if !u.HasSetPassword || u.PasswordHash == "" {
		return false
	}
	return CheckPasswordHash(password, u.PasswordHash)
}
