package entity

import (
	"planora/internal/core/id"
)

// TenantOwned marks entities that live inside an entrepreneur's tenant.
// The repository layer applies the caller's tenant scope to every query on
// such entities. Tenant users cannot choose the owner; super-admins name
// the target tenant explicitly when creating.
type TenantOwned struct {
	// EntrepreneurID is the tenant root (foreign key to the entrepreneur user).
	EntrepreneurID id.ID `db:"entrepreneur_id" json:"entrepreneurId"`
}

// OwnerTenant returns the owning tenant id.
func (t TenantOwned) OwnerTenant() id.ID {
	return t.EntrepreneurID
}

// SetOwnerTenant assigns the owning tenant id.
func (t *TenantOwned) SetOwnerTenant(entrepreneurID id.ID) {
	t.EntrepreneurID = entrepreneurID
}

// TenantScoped is implemented by entities carrying a tenant boundary.
type TenantScoped interface {
	OwnerTenant() id.ID
	SetOwnerTenant(entrepreneurID id.ID)
}
