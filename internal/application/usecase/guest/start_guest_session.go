package guest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// StartGuestSessionInput represents the input for registering a guest device.
// An empty DeviceID asks the server to issue one.
type StartGuestSessionInput struct {
	DeviceID string
}

// StartGuestSessionOutput represents the output of a guest session start.
type StartGuestSessionOutput struct {
	Session *entity.GuestSession
}

// StartGuestSessionUseCase issues or confirms a device id.
type StartGuestSessionUseCase struct {
	now func() time.Time
}

// NewStartGuestSessionUseCase creates a new StartGuestSessionUseCase instance.
func NewStartGuestSessionUseCase() *StartGuestSessionUseCase {
	return &StartGuestSessionUseCase{now: time.Now}
}

// Execute performs the guest session start.
func (uc *StartGuestSessionUseCase) Execute(_ context.Context, input StartGuestSessionInput) (*StartGuestSessionOutput, error) {
	deviceID := input.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	if err := ValidateDeviceID(deviceID); err != nil {
		return nil, err
	}

	return &StartGuestSessionOutput{
		Session: &entity.GuestSession{
			DeviceID:  deviceID,
			CreatedAt: uc.now().UTC(),
		},
	}, nil
}
