// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/usecase/auth"
	"github.com/annoylog/backend/internal/application/usecase/guest"
	"github.com/annoylog/backend/internal/application/usecase/session"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
	"github.com/annoylog/backend/internal/integration/entrypoint/middleware"
)

// AuthUseCases groups what AuthController needs. StartSession may be nil, in
// which case sign-in skips migration and the entitlement sync.
type AuthUseCases struct {
	Register       *auth.RegisterUserUseCase
	Login          *auth.LoginUserUseCase
	Refresh        *auth.RefreshTokenUseCase
	Logout         *auth.LogoutUserUseCase
	ForgotPassword *auth.ForgotPasswordUseCase
	ResetPassword  *auth.ResetPasswordUseCase
	StartSession   *session.StartSessionUseCase
}

// AuthController serves /auth.
type AuthController struct {
	uc AuthUseCases
}

func NewAuthController(uc AuthUseCases) *AuthController {
	return &AuthController{uc: uc}
}

// Register handles POST /auth/register. The device comes from the body or the
// X-Device-ID header.
func (c *AuthController) Register(ctx *gin.Context) {
	req, ok := bindBody[dto.RegisterRequest](ctx, domainerror.ErrCodeMissingFields)
	if !ok {
		return
	}

	out, err := c.uc.Register.Execute(ctx.Request.Context(), auth.RegisterUserInput{
		Email:         req.Email,
		Name:          req.Name,
		Password:      req.Password,
		Timezone:      req.Timezone,
		TermsAccepted: req.TermsAccepted,
		DeviceID:      resolveDeviceID(req.DeviceID, middleware.DeviceIDFromHeader(ctx)),
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, c.signedIn(ctx, out))
}

func (c *AuthController) Login(ctx *gin.Context) {
	req, ok := bindBody[dto.LoginRequest](ctx, domainerror.ErrCodeMissingFields)
	if !ok {
		return
	}

	out, err := c.uc.Login.Execute(ctx.Request.Context(), auth.LoginUserInput{
		Email:    req.Email,
		Password: req.Password,
		DeviceID: resolveDeviceID(req.DeviceID, middleware.DeviceIDFromHeader(ctx)),
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.signedIn(ctx, out))
}

func (c *AuthController) RefreshToken(ctx *gin.Context) {
	req, ok := bindBody[dto.RefreshTokenRequest](ctx, domainerror.ErrCodeMissingToken)
	if !ok {
		return
	}

	pair, err := c.uc.Refresh.Execute(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToTokenResponse(pair))
}

// Logout always answers 200. A missing or malformed body still clears the
// header device's cached entitlement.
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.LogoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("Logout body ignored", "error", err)
	}

	out := c.uc.Logout.Execute(ctx.Request.Context(), auth.LogoutUserInput{
		RefreshToken: req.RefreshToken,
		DeviceID:     resolveDeviceID(req.DeviceID, middleware.DeviceIDFromHeader(ctx)),
	})
	ctx.JSON(http.StatusOK, dto.LogoutResponse{
		Message:       "Successfully logged out",
		Revoked:       out.Revoked,
		ClearedDevice: out.Device,
	})
}

func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	req, ok := bindBody[dto.ForgotPasswordRequest](ctx, domainerror.ErrCodeInvalidEmail)
	if !ok {
		return
	}

	if err := c.uc.ForgotPassword.Execute(ctx.Request.Context(), req.Email); err != nil {
		c.handleAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{
		Message: "If an account with that email exists, we have sent a password reset link",
	})
}

func (c *AuthController) ResetPassword(ctx *gin.Context) {
	req, ok := bindBody[dto.ResetPasswordRequest](ctx, domainerror.ErrCodeMissingFields)
	if !ok {
		return
	}

	err := c.uc.ResetPassword.Execute(ctx.Request.Context(), auth.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been successfully reset"})
}

// signedIn runs guest migration and the entitlement sync for a fresh session.
// Neither can fail the sign-in; their results ride along in the response.
func (c *AuthController) signedIn(ctx *gin.Context, in *auth.SignedIn) dto.AuthResponse {
	resp := dto.AuthResponse{
		TokenResponse: dto.ToTokenResponse(in.Tokens),
		User:          dto.ToUserResponse(in.User),
	}
	if c.uc.StartSession == nil {
		return resp
	}

	out := c.uc.StartSession.Execute(ctx.Request.Context(), session.StartSessionInput{
		Session: in.Session,
		Migrate: true,
	})
	resp.Migration = dto.ToMigrationResponse(out.Migration)
	resp.Entitlement = dto.FromSyncOutput(out.Entitlement)
	return resp
}

// resolveDeviceID prefers the body over the header and drops malformed ids.
func resolveDeviceID(fromBody, fromHeader string) string {
	deviceID := strings.TrimSpace(fromBody)
	if deviceID == "" {
		deviceID = fromHeader
	}
	if deviceID == "" {
		return ""
	}
	if err := guest.ValidateDeviceID(deviceID); err != nil {
		slog.Warn("Ignoring malformed device id", "error", err)
		return ""
	}
	return deviceID
}

// sessionUserID is a helper for handlers mounted behind Authenticate.
func sessionUserID(ctx *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return uuid.Nil, false
	}
	return userID, true
}

// requireSession is sessionUserID plus a device; see middleware.SessionFromContext.
func requireSession(ctx *gin.Context) (*entity.Session, bool) {
	if _, ok := sessionUserID(ctx); !ok {
		return nil, false
	}
	return middleware.SessionFromContext(ctx)
}

func (c *AuthController) handleAuthError(ctx *gin.Context, err error) {
	if !writeCoded(ctx, err, authErrorStatus) {
		internalError(ctx, "Auth request", err)
	}
}

// authErrorStatus maps auth error codes to HTTP status codes.
func authErrorStatus(code domainerror.AuthErrorCode) int {
	switch code {
	case domainerror.ErrCodeEmailExists:
		return http.StatusConflict
	case domainerror.ErrCodeTermsNotAccepted,
		domainerror.ErrCodeWeakPassword,
		domainerror.ErrCodeInvalidEmail,
		domainerror.ErrCodeMissingFields,
		domainerror.ErrCodeInvalidTimezone,
		domainerror.ErrCodeInvalidResetToken,
		domainerror.ErrCodeExpiredResetToken:
		return http.StatusBadRequest
	case domainerror.ErrCodeInvalidCredentials,
		domainerror.ErrCodeUserNotFound,
		domainerror.ErrCodeInvalidToken,
		domainerror.ErrCodeExpiredToken,
		domainerror.ErrCodeMissingToken:
		return http.StatusUnauthorized
	case domainerror.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
