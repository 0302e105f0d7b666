package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annoylog/backend/internal/application/usecase/session"
	"github.com/annoylog/backend/internal/application/usecase/subscription"
	"github.com/annoylog/backend/internal/domain/entity"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
	"github.com/annoylog/backend/internal/integration/entrypoint/middleware"
)

// SubscriptionController handles entitlement and session-start endpoints.
type SubscriptionController struct {
	fetchUseCase        *subscription.FetchEntitlementStatusUseCase
	syncUseCase         *subscription.SyncEntitlementStatusUseCase
	startSessionUseCase *session.StartSessionUseCase
}

// NewSubscriptionController creates a new subscription controller instance.
func NewSubscriptionController(
	fetchUseCase *subscription.FetchEntitlementStatusUseCase,
	syncUseCase *subscription.SyncEntitlementStatusUseCase,
	startSessionUseCase *session.StartSessionUseCase,
) *SubscriptionController {
	return &SubscriptionController{
		fetchUseCase:        fetchUseCase,
		syncUseCase:         syncUseCase,
		startSessionUseCase: startSessionUseCase,
	}
}

// Get handles GET /subscription requests. It never calls the billing provider.
func (c *SubscriptionController) Get(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}

	output, err := c.fetchUseCase.Execute(ctx.Request.Context(), subscription.FetchEntitlementInput{Session: sess})
	if err != nil {
		slog.Error("Failed to fetch entitlement", "userID", sess.UserID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to retrieve subscription status",
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.FromFetchOutput(output))
}

// Sync handles POST /subscription/sync requests, called after a purchase or restore.
func (c *SubscriptionController) Sync(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}

	output := c.syncUseCase.Execute(ctx.Request.Context(), subscription.SyncEntitlementInput{Session: sess})
	ctx.JSON(http.StatusOK, dto.FromSyncOutput(output))
}

// StartSession handles POST /session/start, the app-foreground call.
// Migration runs only when the body asks for it and a device id is known.
func (c *SubscriptionController) StartSession(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	var req dto.StartSessionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid request body",
			})
			return
		}
	}

	migrate := req.Migrate != nil && *req.Migrate
	deviceID := resolveDeviceID(req.DeviceID, middleware.DeviceIDFromHeader(ctx))

	output := c.startSessionUseCase.Execute(ctx.Request.Context(), session.StartSessionInput{
		Session: entity.NewSession(userID, deviceID),
		Migrate: migrate,
	})

	ctx.JSON(http.StatusOK, dto.ToSessionResponse(output))
}
