package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annoylog/backend/internal/application/usecase/auth"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
)

// UserController serves the signed-in account under /users/me.
type UserController struct {
	getProfile    *auth.GetProfileUseCase
	updateProfile *auth.UpdateProfileUseCase
	deleteAccount *auth.DeleteAccountUseCase
}

// NewUserController creates a new user controller instance.
func NewUserController(
	getProfile *auth.GetProfileUseCase,
	updateProfile *auth.UpdateProfileUseCase,
	deleteAccount *auth.DeleteAccountUseCase,
) *UserController {
	return &UserController{
		getProfile:    getProfile,
		updateProfile: updateProfile,
		deleteAccount: deleteAccount,
	}
}

// GetProfile handles GET /users/me.
func (c *UserController) GetProfile(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	user, err := c.getProfile.Execute(ctx.Request.Context(), userID)
	if err != nil {
		c.handleAccountError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// UpdateProfile handles PATCH /users/me.
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	req, ok := bindBody[dto.UpdateProfileRequest](ctx, domainerror.ErrCodeInvalidProfile)
	if !ok {
		return
	}

	user, err := c.updateProfile.Execute(ctx.Request.Context(), auth.UpdateProfileInput{
		UserID:   userID,
		Name:     req.Name,
		Timezone: req.Timezone,
	})
	if err != nil {
		c.handleAccountError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// DeleteAccount handles DELETE /users/me. The account goes with its entries,
// categories, subscription and migration marker.
func (c *UserController) DeleteAccount(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	req, ok := bindBody[dto.DeleteAccountRequest](ctx, domainerror.ErrCodeMissingFields)
	if !ok {
		return
	}

	err := c.deleteAccount.Execute(ctx.Request.Context(), auth.DeleteAccountInput{
		UserID:       userID,
		Password:     req.Password,
		Confirmation: req.Confirmation,
	})
	if err != nil {
		c.handleAccountError(ctx, err)
		return
	}

	slog.Info("Account deleted", "userID", userID)
	ctx.Status(http.StatusNoContent)
}

func (c *UserController) handleAccountError(ctx *gin.Context, err error) {
	if !writeCoded(ctx, err, accountErrorStatus) {
		internalError(ctx, "Account request", err)
	}
}

// accountErrorStatus differs from the sign-in mapping: a wrong password here
// is a 401 but a vanished account is a 404.
func accountErrorStatus(code domainerror.AuthErrorCode) int {
	switch code {
	case domainerror.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case domainerror.ErrCodeUserNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeInvalidConfirmation,
		domainerror.ErrCodeMissingFields,
		domainerror.ErrCodeInvalidProfile,
		domainerror.ErrCodeInvalidTimezone:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
