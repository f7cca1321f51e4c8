package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role is the closed set of membership roles. Role strings arriving from
// clients are normalized exactly once through ParseRole; comparisons after
// that are plain equality.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleDoctor   Role = "doctor"
	RoleNurse    Role = "nurse"
	RoleLab      Role = "lab"
	RolePharmacy Role = "pharmacy"
	RoleCashier  Role = "cashier"
	RoleViewer   Role = "viewer"
)

var allRoles = map[Role]struct{}{
	RoleOwner:    {},
	RoleAdmin:    {},
	RoleDoctor:   {},
	RoleNurse:    {},
	RoleLab:      {},
	RolePharmacy: {},
	RoleCashier:  {},
	RoleViewer:   {},
}

// ParseRole canonicalizes a role string case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := allRoles[r]; !ok {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

func (r Role) String() string { return string(r) }

// Membership links a user to an organization. A user may hold memberships in
// several organizations but exactly one role per organization.
type Membership struct {
	Base
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Role           Role      `db:"role" json:"role"`
}

type CreateMembershipRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Role   string    `json:"role" binding:"required"`
}
