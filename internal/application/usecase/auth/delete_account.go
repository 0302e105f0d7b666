// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// deleteConfirmation is the literal a client must echo back, if it sends one.
const deleteConfirmation = "DELETE"

type DeleteAccountInput struct {
	UserID       uuid.UUID
	Password     string
	Confirmation string
}

// DeleteAccountUseCase erases an account. Sessions are revoked first, then the
// user's rows go child tables first so a failure part way leaves a user that
// can retry the deletion.
type DeleteAccountUseCase struct {
	users  adapter.UserRepository
	hasher adapter.PasswordHasher
	tokens adapter.TokenService
	purge  []purgeStep
}

type purgeStep struct {
	what string
	run  func(context.Context, uuid.UUID) error
}

func NewDeleteAccountUseCase(
	users adapter.UserRepository,
	hasher adapter.PasswordHasher,
	tokens adapter.TokenService,
	entries adapter.EntryRepository,
	categories adapter.CategoryRepository,
	subscriptions adapter.SubscriptionRepository,
	migrations adapter.GuestMigrationRepository,
) *DeleteAccountUseCase {
	return &DeleteAccountUseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		purge: []purgeStep{
			{"entries", entries.DeleteByUserID},
			{"categories", categories.DeleteByUserID},
			{"subscription", subscriptions.DeleteByUserID},
			{"migration marker", migrations.DeleteByUserID},
			{"user", users.Delete},
		},
	}
}

func (uc *DeleteAccountUseCase) Execute(ctx context.Context, input DeleteAccountInput) error {
	if input.Confirmation != "" && input.Confirmation != deleteConfirmation {
		return domainerror.NewAuthError(
			domainerror.ErrCodeInvalidConfirmation,
			"confirmation must be exactly '"+deleteConfirmation+"'",
			nil,
		)
	}

	user, err := uc.users.FindByID(ctx, input.UserID)
	if err != nil {
		return accountLookupError(err)
	}
	if !uc.hasher.Check(user.PasswordHash, input.Password) {
		return domainerror.NewAuthError(domainerror.ErrCodeInvalidCredentials, "invalid password", domainerror.ErrInvalidCredentials)
	}

	if err := uc.tokens.RevokeUserTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	for _, step := range uc.purge {
		if err := step.run(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to delete %s: %w", step.what, err)
		}
	}
	return nil
}
