package operations

import (
	"context"
	"time"

	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/nkkko/eventops/pkg/querykey"
)

// Dashboard aggregates the organization's counts. With an event id, tasks,
// work orders, assignments and credentials are narrowed to that event.
func (s *Service) Dashboard(ctx context.Context, orgID, eventID string) (*model.DashboardSummary, error) {
	ctx, span := s.begin(ctx, "dashboard", orgID)
	defer span.End()

	now := s.now()
	summary := &model.DashboardSummary{
		OrgID:         orgID,
		EventID:       eventID,
		TasksByStatus: make(map[model.TaskStatus]int),
		GeneratedAt:   now,
	}

	inScope := func(ev string) bool {
		return eventID == "" || ev == eventID
	}

	tasks, err := s.ListTasks(ctx, orgID, querykey.FilterAll)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if inScope(t.EventID) {
			summary.TasksByStatus[t.Status]++
		}
	}

	workOrders, err := list(ctx, s, storage.CollectionWorkOrders, orgID, func(wo model.WorkOrder) bool {
		return inScope(wo.EventID) && wo.Status != model.WorkOrderClosed
	})
	if err != nil {
		return nil, err
	}
	summary.OpenWorkOrders = len(workOrders)

	damaged, err := s.ListAssets(ctx, orgID, string(model.AssetDamaged))
	if err != nil {
		return nil, err
	}
	summary.DamagedAssets = len(damaged)

	startOfDay := now.Truncate(24 * time.Hour)
	movements, err := list(ctx, s, storage.CollectionMovements, orgID, func(m model.Movement) bool {
		return !m.At.Before(startOfDay)
	})
	if err != nil {
		return nil, err
	}
	summary.MovementsToday = len(movements)

	assignments, err := list(ctx, s, storage.CollectionAssignments, orgID, func(a model.Assignment) bool {
		return inScope(a.EventID)
	})
	if err != nil {
		return nil, err
	}
	staff := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		staff[a.StaffMemberID] = true
	}
	summary.StaffAssigned = len(staff)

	credentials, err := list(ctx, s, storage.CollectionCredentials, orgID, func(c model.Credential) bool {
		return inScope(c.EventID) && !c.Revoked
	})
	if err != nil {
		return nil, err
	}
	summary.ActiveCredentials = len(credentials)

	return summary, nil
}
