package app

import (
	"fmt"

	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/google/uuid"
)

// LocalPrincipal is the operator identity used by the CLI and the MCP
// server. It acts as admin for the configured health units only, so
// listings stay scoped to those calendars.
func LocalPrincipal(cfg *config.Config) (identityDomain.Principal, error) {
	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return identityDomain.Principal{}, fmt.Errorf("invalid CARECAL_USER_ID: %w", err)
	}

	units := make([]uuid.UUID, 0, len(cfg.HealthUnits))
	for _, raw := range cfg.HealthUnits {
		id, err := uuid.Parse(raw)
		if err != nil {
			return identityDomain.Principal{}, fmt.Errorf("invalid health unit %q: %w", raw, err)
		}
		units = append(units, id)
	}

	return identityDomain.Principal{
		UserID:      userID,
		Role:        identityDomain.RoleAdmin,
		HealthUnits: units,
	}, nil
}
