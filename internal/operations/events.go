package operations

import (
	"context"
	"fmt"

	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/nkkko/eventops/pkg/querykey"
)

// CreateEvent creates an event for an organization
func (s *Service) CreateEvent(ctx context.Context, orgID string, req model.CreateEventRequest) (*model.Event, error) {
	const op = "create_event"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	if !req.EndsAt.IsZero() && req.EndsAt.Before(req.StartsAt) {
		return nil, s.finish(ctx, op, fmt.Errorf("event ends before it starts: %w", ErrInvalidInput))
	}

	event := model.Event{
		ID:        s.newID(),
		OrgID:     orgID,
		Name:      req.Name,
		Venue:     req.Venue,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		CreatedAt: s.now(),
	}

	if err := s.put(ctx, storage.CollectionEvents, orgID, event.ID, event); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &event, s.finish(ctx, op, nil,
		querykey.Events(orgID),
		querykey.Event(event.ID),
		querykey.Dashboard(orgID),
	)
}

// CreateZone adds a zone to an existing event
func (s *Service) CreateZone(ctx context.Context, orgID string, req model.CreateZoneRequest) (*model.Zone, error) {
	const op = "create_zone"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	if _, err := lookup[model.Event](ctx, s, storage.CollectionEvents, orgID, req.EventID, "event"); err != nil {
		return nil, s.finish(ctx, op, err)
	}
	if req.Capacity < 0 {
		return nil, s.finish(ctx, op, fmt.Errorf("negative capacity: %w", ErrInvalidInput))
	}

	zone := model.Zone{
		ID:       s.newID(),
		OrgID:    orgID,
		EventID:  req.EventID,
		Name:     req.Name,
		Capacity: req.Capacity,
	}

	if err := s.put(ctx, storage.CollectionZones, orgID, zone.ID, zone); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &zone, s.finish(ctx, op, nil,
		querykey.ZonesByEvent(zone.EventID),
		querykey.Event(zone.EventID),
	)
}

// ListEvents returns the events of an organization
func (s *Service) ListEvents(ctx context.Context, orgID string) ([]model.Event, error) {
	return list[model.Event](ctx, s, storage.CollectionEvents, orgID, nil)
}

// GetEvent returns one event
func (s *Service) GetEvent(ctx context.Context, orgID, eventID string) (*model.Event, error) {
	event, err := lookup[model.Event](ctx, s, storage.CollectionEvents, orgID, eventID, "event")
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListZones returns the zones of an event
func (s *Service) ListZones(ctx context.Context, orgID, eventID string) ([]model.Zone, error) {
	return list(ctx, s, storage.CollectionZones, orgID, func(z model.Zone) bool {
		return z.EventID == eventID
	})
}
