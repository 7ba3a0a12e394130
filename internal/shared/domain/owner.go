package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// OwnerType says who a calendar entry belongs to.
type OwnerType string

const (
	OwnerHealthUnit   OwnerType = "health_unit"
	OwnerCollaborator OwnerType = "collaborator"
)

// IsValid checks if the owner type is known.
func (t OwnerType) IsValid() bool {
	return t == OwnerHealthUnit || t == OwnerCollaborator
}

// ParseOwnerType converts the wire value into an OwnerType.
func ParseOwnerType(s string) (OwnerType, error) {
	t := OwnerType(s)
	if !t.IsValid() {
		return "", NewValidationError("owner_type", fmt.Sprintf("unknown owner type %q", s))
	}
	return t, nil
}

// Owner identifies the health unit or collaborator owning a series or event.
type Owner struct {
	ID   uuid.UUID
	Type OwnerType
}

// NewOwner validates and builds an Owner.
func NewOwner(id uuid.UUID, t OwnerType) (Owner, error) {
	if id == uuid.Nil {
		return Owner{}, NewValidationError("owner", "is required")
	}
	if !t.IsValid() {
		return Owner{}, NewValidationError("owner_type", fmt.Sprintf("unknown owner type %q", t))
	}
	return Owner{ID: id, Type: t}, nil
}

// HealthUnitOwner is the owner of series created from accepted orders.
func HealthUnitOwner(id uuid.UUID) Owner {
	return Owner{ID: id, Type: OwnerHealthUnit}
}

func (o Owner) IsZero() bool { return o.ID == uuid.Nil }

func (o Owner) String() string {
	return string(o.Type) + ":" + o.ID.String()
}
