package application

import (
	"context"

	"github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// EventMetadataFromContext builds event metadata for the acting user. The
// correlation ID is taken from ctx when it holds a UUID so events can be
// traced back to the request that produced them.
func EventMetadataFromContext(ctx context.Context, userID uuid.UUID) domain.EventMetadata {
	correlationID, err := uuid.Parse(observability.CorrelationIDFromContext(ctx))
	if err != nil {
		correlationID = uuid.New()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New(),
		UserID:        userID,
	}
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
