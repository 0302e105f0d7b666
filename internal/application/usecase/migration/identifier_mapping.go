package migration

import (
	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
	"github.com/annoylog/backend/internal/domain/valueobject"
)

// IdentifierMapping maps staged category ids to the remote ids assigned
// during one migration run.
type IdentifierMapping map[valueobject.LocalID]uuid.UUID

// Resolve translates a staged entry's category reference into a remote
// category id. Unresolvable references yield nil.
func (m IdentifierMapping) Resolve(ref *valueobject.CategoryRef) *uuid.UUID {
	if ref == nil {
		return nil
	}

	switch ref.Kind {
	case valueobject.CategoryRefDefault:
		if id, ok := entity.DefaultCategoryID(ref.ID); ok {
			return &id
		}
	case valueobject.CategoryRefUser:
		if id, ok := m[ref.LocalID()]; ok {
			return &id
		}
	case valueobject.CategoryRefLegacy:
		if id, ok := m[ref.LocalID()]; ok {
			return &id
		}
		if id, ok := entity.DefaultCategoryID(ref.ID); ok {
			return &id
		}
		// Older payloads may already carry a default category's remote id.
		if id, err := uuid.Parse(ref.ID); err == nil && entity.IsDefaultCategoryID(id) {
			return &id
		}
	}
	return nil
}
