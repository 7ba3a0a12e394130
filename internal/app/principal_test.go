package app

import (
	"testing"

	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPrincipal(t *testing.T) {
	unit := uuid.New()
	cfg := &config.Config{UserID: config.DefaultUserID, HealthUnits: []string{unit.String()}}

	p, err := LocalPrincipal(cfg)
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse(config.DefaultUserID), p.UserID)
	assert.Equal(t, identityDomain.RoleAdmin, p.Role)
	assert.Equal(t, []uuid.UUID{unit}, p.VisibleOwners())
	assert.True(t, p.CanEdit(unit))
	assert.False(t, p.CanSee(uuid.New()))
}

func TestLocalPrincipal_RejectsMalformedIDs(t *testing.T) {
	_, err := LocalPrincipal(&config.Config{UserID: "me"})
	assert.ErrorContains(t, err, "CARECAL_USER_ID")

	_, err = LocalPrincipal(&config.Config{UserID: config.DefaultUserID, HealthUnits: []string{"ward-3"}})
	assert.ErrorContains(t, err, "ward-3")
}
