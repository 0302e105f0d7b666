// Package valueobject contains immutable domain values shared across entities.
package valueobject

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CategoryRefKind identifies the namespace a category reference points into.
type CategoryRefKind string

const (
	// CategoryRefDefault points at one of the fixed default categories by key (e.g. "work").
	CategoryRefDefault CategoryRefKind = "default"
	// CategoryRefUser points at a user-created category by its local id.
	CategoryRefUser CategoryRefKind = "user"
	// CategoryRefLegacy is a raw identifier from older payloads with no namespace.
	CategoryRefLegacy CategoryRefKind = "legacy"
)

// Prefixes used by older clients to flatten the reference kind into a single string.
const (
	legacyDefaultPrefix = "default-"
	legacyDBPrefix      = "db-"
	legacyUserPrefix    = "user-"
)

// ErrInvalidCategoryRef is returned when a category reference cannot be decoded.
var ErrInvalidCategoryRef = errors.New("invalid category reference")

// CategoryRef is a tagged reference from a staged entry to a category.
type CategoryRef struct {
	Kind CategoryRefKind `json:"kind"`
	ID   string          `json:"id"`
}

// DefaultRef builds a reference to a default category key.
func DefaultRef(key string) CategoryRef {
	return CategoryRef{Kind: CategoryRefDefault, ID: key}
}

// UserRef builds a reference to a locally created category.
func UserRef(localID LocalID) CategoryRef {
	return CategoryRef{Kind: CategoryRefUser, ID: string(localID)}
}

// LegacyRef builds a reference with no namespace.
func LegacyRef(id string) CategoryRef {
	return CategoryRef{Kind: CategoryRefLegacy, ID: id}
}

// LocalID returns the reference id as a local identifier.
func (r CategoryRef) LocalID() LocalID {
	return LocalID(r.ID)
}

// Validate checks the kind and id.
func (r CategoryRef) Validate() error {
	switch r.Kind {
	case CategoryRefDefault, CategoryRefUser, CategoryRefLegacy:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidCategoryRef, r.Kind)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidCategoryRef)
	}
	return nil
}

// UnmarshalJSON accepts the tagged object form and the legacy scalar forms
// (numbers, "default-x", "db-x", "user-x" and bare strings).
func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrInvalidCategoryRef
	}

	switch data[0] {
	case '{':
		type tagged CategoryRef
		var t tagged
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCategoryRef, err)
		}
		ref := CategoryRef(t)
		if err := ref.Validate(); err != nil {
			return err
		}
		*r = ref
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCategoryRef, err)
		}
		ref, err := ParseLegacyCategoryRef(s)
		if err != nil {
			return err
		}
		*r = ref
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCategoryRef, err)
		}
		*r = LegacyRef(n.String())
		return nil
	}
}

// ParseLegacyCategoryRef decodes the prefixed string shape used by older clients.
func ParseLegacyCategoryRef(s string) (CategoryRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryRef{}, fmt.Errorf("%w: empty id", ErrInvalidCategoryRef)
	}

	var ref CategoryRef
	switch {
	case strings.HasPrefix(s, legacyDefaultPrefix):
		ref = DefaultRef(strings.TrimPrefix(s, legacyDefaultPrefix))
	case strings.HasPrefix(s, legacyDBPrefix):
		ref = CategoryRef{Kind: CategoryRefUser, ID: strings.TrimPrefix(s, legacyDBPrefix)}
	case strings.HasPrefix(s, legacyUserPrefix):
		ref = CategoryRef{Kind: CategoryRefUser, ID: strings.TrimPrefix(s, legacyUserPrefix)}
	default:
		ref = LegacyRef(s)
	}
	if err := ref.Validate(); err != nil {
		return CategoryRef{}, err
	}
	return ref, nil
}

// LocalID identifies a record staged on a device before it has a remote id.
// Older clients used numeric timestamps, so both numbers and strings decode.
type LocalID string

// UnmarshalJSON decodes a number or a string into a LocalID.
func (id *LocalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = LocalID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("local id must be a string or a number: %w", err)
	}
	*id = LocalID(n.String())
	return nil
}

// NewLocalID derives a local id from a unix-millisecond timestamp.
func NewLocalID(unixMilli int64) LocalID {
	return LocalID(strconv.FormatInt(unixMilli, 10))
}

// String implements fmt.Stringer.
func (id LocalID) String() string {
	return string(id)
}
