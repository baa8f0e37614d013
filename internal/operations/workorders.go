package operations

import (
	"context"
	"fmt"

	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/nkkko/eventops/pkg/querykey"
)

// CreateWorkOrder opens a work order for an event
func (s *Service) CreateWorkOrder(ctx context.Context, orgID string, req model.CreateWorkOrderRequest) (*model.WorkOrder, error) {
	const op = "create_work_order"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	if _, err := lookup[model.Event](ctx, s, storage.CollectionEvents, orgID, req.EventID, "event"); err != nil {
		return nil, s.finish(ctx, op, err)
	}
	if req.ZoneID != "" {
		zone, err := lookup[model.Zone](ctx, s, storage.CollectionZones, orgID, req.ZoneID, "zone")
		if err != nil {
			return nil, s.finish(ctx, op, err)
		}
		if zone.EventID != req.EventID {
			return nil, s.finish(ctx, op, fmt.Errorf("zone %s belongs to another event: %w", zone.ID, ErrInvalidInput))
		}
	}

	now := s.now()
	wo := model.WorkOrder{
		ID:          s.newID(),
		OrgID:       orgID,
		EventID:     req.EventID,
		ZoneID:      req.ZoneID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.WorkOrderOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.put(ctx, storage.CollectionWorkOrders, orgID, wo.ID, wo); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &wo, s.finish(ctx, op, nil,
		querykey.WorkOrdersByEvent(orgID, wo.EventID),
		querykey.Dashboard(orgID),
	)
}

// UpdateWorkOrderStatus moves a work order to a new status
func (s *Service) UpdateWorkOrderStatus(ctx context.Context, orgID, workOrderID string, req model.UpdateWorkOrderStatusRequest) (*model.WorkOrder, error) {
	const op = "update_work_order_status"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	if !req.Status.Valid() {
		return nil, s.finish(ctx, op, fmt.Errorf("work order status %q: %w", req.Status, ErrInvalidInput))
	}

	wo, err := lookup[model.WorkOrder](ctx, s, storage.CollectionWorkOrders, orgID, workOrderID, "work order")
	if err != nil {
		return nil, s.finish(ctx, op, err)
	}

	if wo.Status == req.Status {
		return &wo, s.finish(ctx, op, nil)
	}
	if !wo.Status.CanTransitionTo(req.Status) {
		return nil, s.finish(ctx, op, fmt.Errorf("work order %s from %s to %s: %w", wo.ID, wo.Status, req.Status, ErrInvalidTransition))
	}

	wo.Status = req.Status
	wo.UpdatedAt = s.now()

	if err := s.put(ctx, storage.CollectionWorkOrders, orgID, wo.ID, wo); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &wo, s.finish(ctx, op, nil,
		querykey.WorkOrdersByEvent(orgID, wo.EventID),
		querykey.Dashboard(orgID),
	)
}

// ListWorkOrders returns the work orders of an event
func (s *Service) ListWorkOrders(ctx context.Context, orgID, eventID string) ([]model.WorkOrder, error) {
	return list(ctx, s, storage.CollectionWorkOrders, orgID, func(wo model.WorkOrder) bool {
		return wo.EventID == eventID
	})
}
