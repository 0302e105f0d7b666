package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/annoylog/backend/internal/application/usecase/guest"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
)

// DeviceIDHeader carries the device id on guest and session calls.
const DeviceIDHeader = "X-Device-ID"

// DeviceIDKey is the context key for a validated device id.
const DeviceIDKey ContextKey = "device_id"

// RequireDevice rejects requests without a well-formed X-Device-ID header.
func RequireDevice() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := DeviceIDFromHeader(c)
		if err := guest.ValidateDeviceID(deviceID); err != nil {
			var guestErr *domainerror.GuestError
			code := domainerror.ErrCodeInvalidDeviceID
			if errors.As(err, &guestErr) {
				code = guestErr.Code
			}
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: err.Error(),
				Code:  string(code),
			})
			c.Abort()
			return
		}

		c.Set(string(DeviceIDKey), deviceID)
		c.Next()
	}
}

// DeviceIDFromHeader returns the trimmed X-Device-ID header, possibly empty.
func DeviceIDFromHeader(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(DeviceIDHeader))
}

// GetDeviceIDFromContext returns the device id stored by RequireDevice.
func GetDeviceIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(string(DeviceIDKey))
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
