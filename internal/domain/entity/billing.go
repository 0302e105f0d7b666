package entity

import "time"

// EntitlementInfo is one entitlement as reported by the billing provider.
type EntitlementInfo struct {
	Identifier        string
	ProductIdentifier string
	ExpiresAt         *time.Time
	WillRenew         bool
}

// CustomerInfo is the billing provider's snapshot of a customer.
type CustomerInfo struct {
	CustomerID string
	Active     map[string]EntitlementInfo
	All        map[string]EntitlementInfo
}

// DeriveSnapshot derives the Pro triple for the named entitlement.
func (c *CustomerInfo) DeriveSnapshot(entitlementID string) EntitlementSnapshot {
	if c == nil {
		return NoEntitlementSnapshot()
	}

	if info, ok := c.Active[entitlementID]; ok {
		status := EntitlementStatusCancelled
		if info.WillRenew {
			status = EntitlementStatusActive
		}
		return EntitlementSnapshot{
			IsPro:     true,
			Status:    status,
			ExpiresAt: info.ExpiresAt,
		}
	}

	if info, ok := c.All[entitlementID]; ok {
		return EntitlementSnapshot{
			IsPro:     false,
			Status:    EntitlementStatusExpired,
			ExpiresAt: info.ExpiresAt,
		}
	}

	return NoEntitlementSnapshot()
}
