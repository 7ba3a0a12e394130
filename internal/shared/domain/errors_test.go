package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := domain.NewValidationError("weekday", "must be between 0 and 6")

	assert.Equal(t, "validation failed: weekday must be between 0 and 6", err.Error())
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.True(t, domain.IsValidation(fmt.Errorf("create series: %w", err)))
	assert.False(t, domain.IsValidation(domain.ErrNotFound))

	var ve *domain.ValidationError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &ve))
	assert.Equal(t, "weekday", ve.Field)
}

func TestValidationError_NoField(t *testing.T) {
	err := domain.NewValidationError("", "window is required")
	assert.Equal(t, "validation failed: window is required", err.Error())
}

func TestNewOwner(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		id      uuid.UUID
		ownerT  domain.OwnerType
		wantErr bool
	}{
		{"health unit", id, domain.OwnerHealthUnit, false},
		{"collaborator", id, domain.OwnerCollaborator, false},
		{"missing id", uuid.Nil, domain.OwnerHealthUnit, true},
		{"unknown type", id, domain.OwnerType("customer"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, err := domain.NewOwner(tt.id, tt.ownerT)
			if tt.wantErr {
				assert.True(t, domain.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, owner.ID)
			assert.Equal(t, tt.ownerT, owner.Type)
		})
	}
}

func TestParseOwnerType(t *testing.T) {
	ot, err := domain.ParseOwnerType("health_unit")
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerHealthUnit, ot)

	_, err = domain.ParseOwnerType("patient")
	assert.True(t, domain.IsValidation(err))
}

func TestHealthUnitOwner(t *testing.T) {
	id := uuid.New()
	owner := domain.HealthUnitOwner(id)

	assert.Equal(t, domain.OwnerHealthUnit, owner.Type)
	assert.False(t, owner.IsZero())
	assert.Equal(t, "health_unit:"+id.String(), owner.String())
	assert.True(t, domain.Owner{}.IsZero())
}
