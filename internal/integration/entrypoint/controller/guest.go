package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annoylog/backend/internal/application/usecase/guest"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/domain/valueobject"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
	"github.com/annoylog/backend/internal/integration/entrypoint/middleware"
)

// GuestController handles pre-sign-in staging endpoints.
type GuestController struct {
	startUseCase         *guest.StartGuestSessionUseCase
	stageCategoryUseCase *guest.StageCategoryUseCase
	stageEntryUseCase    *guest.StageEntryUseCase
	listUseCase          *guest.ListStagedUseCase
	deleteEntryUseCase   *guest.DeleteStagedEntryUseCase
}

// NewGuestController creates a new guest controller instance.
func NewGuestController(
	startUseCase *guest.StartGuestSessionUseCase,
	stageCategoryUseCase *guest.StageCategoryUseCase,
	stageEntryUseCase *guest.StageEntryUseCase,
	listUseCase *guest.ListStagedUseCase,
	deleteEntryUseCase *guest.DeleteStagedEntryUseCase,
) *GuestController {
	return &GuestController{
		startUseCase:         startUseCase,
		stageCategoryUseCase: stageCategoryUseCase,
		stageEntryUseCase:    stageEntryUseCase,
		listUseCase:          listUseCase,
		deleteEntryUseCase:   deleteEntryUseCase,
	}
}

// StartSession handles POST /guest/session requests.
func (c *GuestController) StartSession(ctx *gin.Context) {
	var req dto.StartGuestSessionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid request body",
			})
			return
		}
	}
	if req.DeviceID == "" {
		req.DeviceID = middleware.DeviceIDFromHeader(ctx)
	}

	output, err := c.startUseCase.Execute(ctx.Request.Context(), guest.StartGuestSessionInput{DeviceID: req.DeviceID})
	if err != nil {
		c.handleGuestError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.GuestSessionResponse{
		DeviceID:  output.Session.DeviceID,
		CreatedAt: output.Session.CreatedAt,
	})
}

// List handles GET /guest/staged requests.
func (c *GuestController) List(ctx *gin.Context) {
	deviceID, _ := middleware.GetDeviceIDFromContext(ctx)

	output, err := c.listUseCase.Execute(ctx.Request.Context(), guest.ListStagedInput{DeviceID: deviceID})
	if err != nil {
		c.handleGuestError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToStagedDataResponse(output.Categories, output.Entries))
}

// CreateCategory handles POST /guest/categories requests.
func (c *GuestController) CreateCategory(ctx *gin.Context) {
	deviceID, _ := middleware.GetDeviceIDFromContext(ctx)

	req, ok := bindBody[dto.StageCategoryRequest](ctx, domainerror.ErrCodeInvalidStagedCategory)
	if !ok {
		return
	}

	output, err := c.stageCategoryUseCase.Execute(ctx.Request.Context(), guest.StageCategoryInput{
		DeviceID: deviceID,
		Name:     req.Name,
		Emoji:    req.Emoji,
		Color:    req.Color,
	})
	if err != nil {
		c.handleGuestError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToStagedCategoryResponse(output.Category))
}

// CreateEntry handles POST /guest/entries requests.
func (c *GuestController) CreateEntry(ctx *gin.Context) {
	deviceID, _ := middleware.GetDeviceIDFromContext(ctx)

	req, ok := bindBody[dto.StageEntryRequest](ctx, domainerror.ErrCodeInvalidStagedEntry)
	if !ok {
		return
	}

	output, err := c.stageEntryUseCase.Execute(ctx.Request.Context(), guest.StageEntryInput{
		DeviceID: deviceID,
		Text:     req.Text,
		Rating:   req.Rating,
		Category: req.Category,
	})
	if err != nil {
		c.handleGuestError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToStagedEntryResponse(output.Entry))
}

// DeleteEntry handles DELETE /guest/entries/:id requests.
func (c *GuestController) DeleteEntry(ctx *gin.Context) {
	deviceID, _ := middleware.GetDeviceIDFromContext(ctx)

	err := c.deleteEntryUseCase.Execute(ctx.Request.Context(), guest.DeleteStagedEntryInput{
		DeviceID: deviceID,
		LocalID:  valueobject.LocalID(ctx.Param("id")),
	})
	if err != nil {
		c.handleGuestError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// handleGuestError maps guest errors and the entry and category validation
// errors staged writes share with the account side.
func (c *GuestController) handleGuestError(ctx *gin.Context, err error) {
	if writeCoded(ctx, err, guestErrorStatus) ||
		writeCoded(ctx, err, entryErrorStatus) ||
		writeCoded(ctx, err, categoryErrorStatus) {
		return
	}
	internalError(ctx, "Guest request", err)
}

// guestErrorStatus maps guest error codes to HTTP status codes.
func guestErrorStatus(code domainerror.GuestErrorCode) int {
	switch code {
	case domainerror.ErrCodeMissingDeviceID,
		domainerror.ErrCodeInvalidDeviceID,
		domainerror.ErrCodeInvalidStagedEntry,
		domainerror.ErrCodeInvalidStagedCategory,
		domainerror.ErrCodeStagedCategoryNotFound:
		return http.StatusBadRequest
	case domainerror.ErrCodeStagedEntryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
