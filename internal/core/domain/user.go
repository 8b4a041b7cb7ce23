package domain

const (
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
	RoleCourier  = "courier"
)

// Principal is the authenticated caller as seen by the services. Tokens are
// issued by an external identity service.
type Principal struct {
	Username string
	Role     string
	ClientID string
}

// Scope returns the owner filter applied to reads: merchants only see their
// own records, staff roles see everything.
func (p Principal) Scope() string {
	if p.Role == RoleMerchant {
		return p.ClientID
	}
	return ""
}

// CanView reports whether p may read a record owned by ownerID.
func (p Principal) CanView(ownerID string) bool {
	switch p.Role {
	case RoleAdmin, RoleCourier:
		return true
	case RoleMerchant:
		return p.ClientID != "" && p.ClientID == ownerID
	}
	return false
}

// CanManage reports whether p may pay for, cancel or delete a record owned by ownerID.
func (p Principal) CanManage(ownerID string) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleMerchant:
		return p.ClientID != "" && p.ClientID == ownerID
	}
	return false
}

// CanDispatch reports whether p may move parcels through fulfillment.
func (p Principal) CanDispatch() bool {
	return p.Role == RoleAdmin || p.Role == RoleCourier
}

// OwnerID is the owner recorded on records created by p.
func (p Principal) OwnerID() string {
	if p.ClientID != "" {
		return p.ClientID
	}
	return p.Username
}

// Actor is the name recorded on status history entries.
func (p Principal) Actor() string {
	if p.Username != "" {
		return p.Username
	}
	return p.Role
}
