package models

// Identity is the caller resolved at login. It is created by the
// authenticator, held by the session store and never mutated afterwards.
type Identity struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	HomePartner string `json:"home_partner,omitempty"`
}

// IsAdmin returns true if the caller may ask about any partner.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
