package entity

import (
	"encoding/json"
	"time"

	"github.com/annoylog/backend/internal/domain/valueobject"
)

// StagedCategory is a category created on a device before sign-in.
type StagedCategory struct {
	LocalID   valueobject.LocalID `json:"id"`
	Name      string              `json:"name"`
	Emoji     string              `json:"emoji,omitempty"`
	Color     string              `json:"color,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// UnmarshalJSON also reads the local id from "localId" or "local_id", the
// field names older clients wrote.
func (c *StagedCategory) UnmarshalJSON(data []byte) error {
	type plain StagedCategory
	aux := struct {
		*plain
		CamelID valueobject.LocalID `json:"localId"`
		SnakeID valueobject.LocalID `json:"local_id"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if c.LocalID == "" {
		c.LocalID = aux.CamelID
	}
	if c.LocalID == "" {
		c.LocalID = aux.SnakeID
	}
	return nil
}

// StagedEntry is an entry logged on a device before sign-in.
type StagedEntry struct {
	LocalID   valueobject.LocalID      `json:"id"`
	Text      string                   `json:"text"`
	Rating    int                      `json:"rating"`
	Category  *valueobject.CategoryRef `json:"category,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// UnmarshalJSON accepts the older "category_id" field as an alias for "category".
func (e *StagedEntry) UnmarshalJSON(data []byte) error {
	type plain StagedEntry
	aux := struct {
		*plain
		LegacyCategory *valueobject.CategoryRef `json:"category_id,omitempty"`
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.Category == nil && aux.LegacyCategory != nil {
		e.Category = aux.LegacyCategory
	}
	return nil
}

// GuestSession is an anonymous device registration.
type GuestSession struct {
	DeviceID  string
	CreatedAt time.Time
}
