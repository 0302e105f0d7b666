package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annoylog/backend/internal/application/usecase/subscription"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
)

// ProGate restricts routes to accounts with an active Pro entitlement.
// It must run after Authenticate.
type ProGate struct {
	fetch *subscription.FetchEntitlementStatusUseCase
}

// NewProGate creates a new ProGate.
func NewProGate(fetch *subscription.FetchEntitlementStatusUseCase) *ProGate {
	return &ProGate{fetch: fetch}
}

// RequirePro answers 403 SUB-010001 unless the stored entitlement is Pro.
func (g *ProGate) RequirePro() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			unauthorized(c, "User not authenticated", domainerror.ErrCodeMissingToken)
			return
		}

		out, err := g.fetch.Execute(c.Request.Context(), subscription.FetchEntitlementInput{Session: session})
		if err != nil {
			slog.Error("Failed to read entitlement", "error", err, "userID", session.UserID)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error: "An unexpected error occurred",
				Code:  "INTERNAL_ERROR",
			})
			c.Abort()
			return
		}

		if !out.Snapshot.IsPro {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error: "This feature requires Pro",
				Code:  string(domainerror.ErrCodeProRequired),
				Details: map[string]any{
					"status": string(out.Snapshot.Status),
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
