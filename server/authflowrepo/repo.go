package authflowrepo

import "time"

// AuthFlowState is what a sign-in attempt needs to remember between the redirect to
// the provider and the callback.
type AuthFlowState struct {
	CodeVerifier string
	Nonce        string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	Get(state string) (*AuthFlowState, error)
	Delete(state string) error
	DeleteExpired(before time.Time) int
}
