package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/application/usecase/guest"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
)

// ContextKey namespaces values stored on the gin context.
type ContextKey string

const (
	UserIDKey ContextKey = "user_id"
	// TokenDeviceKey holds the device the access token was issued to.
	TokenDeviceKey ContextKey = "token_device_id"
)

// AuthMiddleware guards routes with access tokens.
type AuthMiddleware struct {
	tokens adapter.TokenService
}

func NewAuthMiddleware(tokens adapter.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate rejects requests without a valid access token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := bearerToken(c.GetHeader("Authorization"))
		if code != "" {
			unauthorized(c, msg, code)
			return
		}

		claims, err := m.tokens.ParseAccessToken(c.Request.Context(), token)
		if errors.Is(err, domainerror.ErrExpiredToken) {
			unauthorized(c, "Access token has expired", domainerror.ErrCodeExpiredToken)
			return
		}
		if err != nil {
			unauthorized(c, "Invalid or expired token", domainerror.ErrCodeInvalidToken)
			return
		}

		c.Set(string(UserIDKey), claims.UserID)
		if claims.DeviceID != "" {
			c.Set(string(TokenDeviceKey), claims.DeviceID)
		}
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header. A non-empty
// code means the header is unusable.
func bearerToken(header string) (string, domainerror.AuthErrorCode, string) {
	if header == "" {
		return "", domainerror.ErrCodeMissingToken, "Authorization header is required"
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", domainerror.ErrCodeInvalidToken, "Invalid authorization header format"
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", domainerror.ErrCodeMissingToken, "Token is required"
	}
	return token, "", ""
}

func unauthorized(c *gin.Context, msg string, code domainerror.AuthErrorCode) {
	c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: msg,
		Code:  string(code),
	})
	c.Abort()
}

// GetUserIDFromContext extracts the user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(string(UserIDKey))
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// TokenDeviceFromContext returns the device bound to the access token, if any.
func TokenDeviceFromContext(c *gin.Context) string {
	return c.GetString(string(TokenDeviceKey))
}

// SessionFromContext builds the session of an authenticated request. A
// well-formed X-Device-ID header wins over the device the token was issued to.
func SessionFromContext(c *gin.Context) (*entity.Session, bool) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return nil, false
	}
	deviceID := DeviceIDFromHeader(c)
	if guest.ValidateDeviceID(deviceID) != nil {
		deviceID = TokenDeviceFromContext(c)
	}
	return entity.NewSession(userID, deviceID), true
}
