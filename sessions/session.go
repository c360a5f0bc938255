package sessions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is a server-side sign-in session. Token is the opaque value carried in the
// session cookie; the record is the only source of truth for its validity.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Token     string    `gorm:"uniqueIndex;not null"`
	UserID    string    `gorm:"index;not null"`
	Expires   time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Expires)
}

// Models lists the tables owned by this package for migrations.
func Models() []interface{} {
	return []interface{}{&Session{}}
}
