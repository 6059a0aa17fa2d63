package events

import (
	"context"

	platformevents "telemarketing_backend/platform/events"
	"telemarketing_backend/platform/logger"
)

type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// OnLeadsImported subscribes fn to committed import batches.
func OnLeadsImported(bus Bus, fn func(ctx context.Context, event LeadsImported) error) {
	platformevents.On(bus, fn)
}
