package domain

import (
	"errors"
	"fmt"
	"slices"

	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
)

// ErrUnauthenticated means no valid credentials were presented.
var ErrUnauthenticated = errors.New("unauthenticated")

// Role is the coarse role carried in the access token.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleCollaborator Role = "collaborator"
)

// Permission is a fine grained capability.
type Permission string

const (
	PermissionCalendarView Permission = "calendar_view"
	PermissionCalendarEdit Permission = "calendar_edit"
	PermissionOrdersManage Permission = "orders_manage"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID         uuid.UUID
	Role           Role
	Permissions    []Permission
	HealthUnits    []uuid.UUID
	CollaboratorID uuid.UUID
}

// Has reports whether the principal holds p. Admins hold every permission.
func (p Principal) Has(perm Permission) bool {
	return p.Role == RoleAdmin || slices.Contains(p.Permissions, perm)
}

// Require returns a wrapped sharedDomain.ErrForbidden when perm is missing.
func (p Principal) Require(perm Permission) error {
	if p.UserID == uuid.Nil {
		return ErrUnauthenticated
	}
	if !p.Has(perm) {
		return fmt.Errorf("%w: missing permission %s", sharedDomain.ErrForbidden, perm)
	}
	return nil
}

// VisibleOwners lists the owners whose series and events the principal may
// see: every health unit it belongs to plus its own collaborator calendar.
// Without calendar_view nothing is visible.
func (p Principal) VisibleOwners() []uuid.UUID {
	if !p.Has(PermissionCalendarView) {
		return nil
	}
	owners := make([]uuid.UUID, 0, len(p.HealthUnits)+1)
	for _, hu := range p.HealthUnits {
		if !slices.Contains(owners, hu) {
			owners = append(owners, hu)
		}
	}
	if p.CollaboratorID != uuid.Nil && !slices.Contains(owners, p.CollaboratorID) {
		owners = append(owners, p.CollaboratorID)
	}
	return owners
}

// CanSee reports whether owner is among the visible owners.
func (p Principal) CanSee(owner uuid.UUID) bool {
	return slices.Contains(p.VisibleOwners(), owner)
}

// CanEdit reports whether the principal may write entries owned by owner.
func (p Principal) CanEdit(owner uuid.UUID) bool {
	if !p.Has(PermissionCalendarEdit) {
		return false
	}
	return slices.Contains(p.HealthUnits, owner) || (p.CollaboratorID != uuid.Nil && p.CollaboratorID == owner)
}

// InHealthUnit reports whether the principal acts for health unit id.
// Admins act for every unit.
func (p Principal) InHealthUnit(id uuid.UUID) bool {
	return p.Role == RoleAdmin || slices.Contains(p.HealthUnits, id)
}
