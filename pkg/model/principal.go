package model

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   Role
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
