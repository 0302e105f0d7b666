// Package adapter defines the ports the use cases depend on; the integration
// layer implements them.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// ProfileChange is a partial profile edit. Nil fields are left alone.
type ProfileChange struct {
	Name     *string
	Timezone *string
}

// UserRepository stores accounts. Lookups miss with domainerror.ErrUserNotFound.
type UserRepository interface {
	// Create fails with domainerror.ErrEmailAlreadyExists when the address is
	// taken, including when a concurrent registration won the race.
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateProfile applies change and returns the stored user.
	UpdateProfile(ctx context.Context, id uuid.UUID, change ProfileChange, at time.Time) (*entity.User, error)
	// SetPasswordHash replaces only the password hash.
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string, at time.Time) error

	Delete(ctx context.Context, id uuid.UUID) error
}
