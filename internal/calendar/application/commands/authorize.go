package commands

import (
	"fmt"

	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
)

// resolveOwner validates the requested owner and checks that p may write
// to its calendar.
func resolveOwner(p identityDomain.Principal, ownerID uuid.UUID, ownerType string) (sharedDomain.Owner, error) {
	if err := p.Require(identityDomain.PermissionCalendarEdit); err != nil {
		return sharedDomain.Owner{}, err
	}

	t, err := sharedDomain.ParseOwnerType(ownerType)
	if err != nil {
		return sharedDomain.Owner{}, err
	}
	owner, err := sharedDomain.NewOwner(ownerID, t)
	if err != nil {
		return sharedDomain.Owner{}, err
	}

	if !p.CanEdit(owner.ID) && p.Role != identityDomain.RoleAdmin {
		return sharedDomain.Owner{}, fmt.Errorf("%w: cannot edit calendar of %s", sharedDomain.ErrForbidden, owner)
	}
	return owner, nil
}
