package domain

import (
	"context"
	"time"
)

// User is a registered account. Rating is the sum of likes minus dislikes over
// every event the user initiated.
type User struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Email  string `json:"email" db:"email"`
	Rating int64  `json:"rating" db:"rating"`
}

type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// RoleModerator grants access to the moderation endpoints.
const RoleModerator = "moderator"

// Claims is the verified content of an access token.
type Claims struct {
	Subject string
	Roles   []string
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenIssuer issues tokens (e.g. JWT) for a subject.
type TokenIssuer interface {
	Issue(subject string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// UserRepository defines the interface for user lookups and rating writes
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByIDForUpdate returns the user and holds a row lock on it until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*User, error)
	SetRating(ctx context.Context, id int64, rating int64) error
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*Category, error)
}
