package entity

import "github.com/google/uuid"

// Session identifies who is calling and from which device.
// A nil *Session is a guest.
type Session struct {
	UserID   uuid.UUID
	DeviceID string
}

// NewSession builds a session for an authenticated account.
func NewSession(userID uuid.UUID, deviceID string) *Session {
	return &Session{UserID: userID, DeviceID: deviceID}
}

// IsAuthenticated reports whether the session belongs to an account.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != uuid.Nil
}

// HasDevice reports whether the session carries a device id.
func (s *Session) HasDevice() bool {
	return s != nil && s.DeviceID != ""
}
