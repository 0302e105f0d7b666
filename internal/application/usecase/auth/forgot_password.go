package auth

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/annoylog/backend/internal/application/adapter"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// ForgotPasswordUseCase issues a reset grant and queues the mail carrying it.
// Only a malformed address is an error; whether the account exists, and
// whether the grant or mail step worked, is never visible to the caller.
type ForgotPasswordUseCase struct {
	users    adapter.UserRepository
	resets   adapter.PasswordResetTokenService
	notifier adapter.Notifier
	appURL   string
}

func NewForgotPasswordUseCase(
	users adapter.UserRepository,
	resets adapter.PasswordResetTokenService,
	notifier adapter.Notifier,
	appURL string,
) *ForgotPasswordUseCase {
	return &ForgotPasswordUseCase{users: users, resets: resets, notifier: notifier, appURL: appURL}
}

func (uc *ForgotPasswordUseCase) Execute(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return domainerror.NewAuthError(domainerror.ErrCodeInvalidEmail, "invalid email format", domainerror.ErrInvalidEmail)
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		slog.Debug("Password reset requested for unknown email")
		return nil
	}

	grant, err := uc.resets.IssueResetToken(ctx, user.ID, user.Email)
	if err != nil {
		slog.Error("Failed to issue reset token", "userID", user.ID, "error", err)
		return nil
	}

	notice := adapter.PasswordResetNotice{
		Email:    user.Email,
		Name:     user.Name,
		Link:     uc.resetLink(grant.Token),
		ValidFor: uc.resets.Lifetime(),
	}
	if uc.notifier == nil {
		slog.Info("Reset link issued without a notifier", "userID", user.ID, "resetURL", notice.Link)
		return nil
	}
	if err := uc.notifier.NotifyPasswordReset(ctx, notice); err != nil {
		slog.Error("Failed to queue password reset email", "userID", user.ID, "error", err)
	}
	return nil
}

func (uc *ForgotPasswordUseCase) resetLink(token string) string {
	return uc.appURL + "/reset-password?" + url.Values{"token": {token}}.Encode()
}
