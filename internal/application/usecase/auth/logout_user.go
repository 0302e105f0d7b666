package auth

import (
	"context"
	"log/slog"

	"github.com/annoylog/backend/internal/application/adapter"
)

// LogoutUserInput carries whatever the client still holds. Both fields may
// be empty.
type LogoutUserInput struct {
	RefreshToken string
	DeviceID     string
}

// LoggedOut describes what a logout actually did. Logout never fails, so
// this is informational.
type LoggedOut struct {
	Revoked bool
	// Device is the device whose cached entitlement was dropped, if any.
	Device string
}

// LogoutUserUseCase revokes the refresh token and drops the device's cached
// entitlement so the next account on the device starts from a clean cache.
type LogoutUserUseCase struct {
	tokens  adapter.TokenService
	staging adapter.GuestStaging
}

func NewLogoutUserUseCase(tokens adapter.TokenService, staging adapter.GuestStaging) *LogoutUserUseCase {
	return &LogoutUserUseCase{tokens: tokens, staging: staging}
}

// Execute falls back to the refresh token's device when no device id is given.
func (uc *LogoutUserUseCase) Execute(ctx context.Context, input LogoutUserInput) LoggedOut {
	var out LoggedOut

	device := input.DeviceID
	if input.RefreshToken != "" {
		if device == "" {
			if claims, err := uc.tokens.ParseRefreshToken(ctx, input.RefreshToken); err == nil {
				device = claims.DeviceID
			}
		}
		if err := uc.tokens.RevokeRefreshToken(ctx, input.RefreshToken); err != nil {
			slog.Warn("Failed to revoke refresh token on logout", "error", err)
		} else {
			out.Revoked = true
		}
	}

	if device == "" || uc.staging == nil {
		return out
	}
	if err := uc.staging.ClearEntitlement(ctx, device); err != nil {
		slog.Warn("Failed to clear cached entitlement on logout", "deviceID", device, "error", err)
		return out
	}
	out.Device = device
	return out
}
