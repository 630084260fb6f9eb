package user

import "errors"

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	// RoleBuyer is a regular customer purchasing tickets.
	RoleBuyer Role = "buyer"
	// RoleStaff validates credentials at a venue entrance.
	RoleStaff Role = "staff"
	// RolePromoter manages events and receives sale notifications.
	RolePromoter Role = "promoter"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func NewRole(value string) (Role, error) {
	r := Role(value)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleStaff, RolePromoter, RoleAdmin:
		return true
	default:
		return false
	}
}
