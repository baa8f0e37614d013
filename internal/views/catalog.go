package views

import (
	"context"

	"github.com/nkkko/eventops/pkg/model"
	"github.com/nkkko/eventops/pkg/querykey"
)

// View names served by the catalog
const (
	ViewEvents      = "events"
	ViewEvent       = "event"
	ViewZones       = "zones"
	ViewTasks       = "tasks"
	ViewTask        = "task"
	ViewWorkOrders  = "work-orders"
	ViewAssets      = "assets"
	ViewKits        = "kits"
	ViewChecklists  = "checklists"
	ViewMovements   = "movements"
	ViewStaff       = "staff"
	ViewAssignments = "assignments"
	ViewCredentials = "credentials"
	ViewDashboard   = "dashboard"
)

// Reader is the read side of the operations service
type Reader interface {
	ListEvents(ctx context.Context, orgID string) ([]model.Event, error)
	GetEvent(ctx context.Context, orgID, eventID string) (*model.Event, error)
	ListZones(ctx context.Context, orgID, eventID string) ([]model.Zone, error)
	ListTasks(ctx context.Context, orgID, filter string) ([]model.Task, error)
	GetTask(ctx context.Context, orgID, taskID string) (*model.Task, error)
	ListWorkOrders(ctx context.Context, orgID, eventID string) ([]model.WorkOrder, error)
	ListAssets(ctx context.Context, orgID, filter string) ([]model.Asset, error)
	ListKits(ctx context.Context, orgID string) ([]model.Kit, error)
	ListChecklists(ctx context.Context, orgID, eventID string) ([]model.Checklist, error)
	ListMovements(ctx context.Context, orgID, filter string) ([]model.Movement, error)
	ListStaffMembers(ctx context.Context, orgID string) ([]model.StaffMember, error)
	ListAssignments(ctx context.Context, orgID, eventID string) ([]model.Assignment, error)
	ListCredentials(ctx context.Context, orgID, eventID string) ([]model.Credential, error)
	Dashboard(ctx context.Context, orgID, eventID string) (*model.DashboardSummary, error)
}

func keys(k ...querykey.Key) []querykey.Key {
	return k
}

// Catalog returns the dashboard's view definitions backed by r
func Catalog(r Reader) []Definition {
	return []Definition{
		{
			Name: ViewEvents,
			Keys: func(s Scope) []querykey.Key { return keys(querykey.Events(s.OrgID)) },
			Load: func(ctx context.Context, s Scope) (any, error) { return r.ListEvents(ctx, s.OrgID) },
		},
		{
			Name:    ViewEvent,
			NeedsID: true,
			Keys:    func(s Scope) []querykey.Key { return keys(querykey.Event(s.ID)) },
			Load:    func(ctx context.Context, s Scope) (any, error) { return r.GetEvent(ctx, s.OrgID, s.ID) },
		},
		{
			Name:       ViewZones,
			NeedsEvent: true,
			Keys:       func(s Scope) []querykey.Key { return keys(querykey.ZonesByEvent(s.EventID)) },
			Load:       func(ctx context.Context, s Scope) (any, error) { return r.ListZones(ctx, s.OrgID, s.EventID) },
		},
		{
			Name: ViewTasks,
			Keys: func(s Scope) []querykey.Key { return keys(querykey.TasksByOrg(s.OrgID, s.Filter)) },
			Load: func(ctx context.Context, s Scope) (any, error) { return r.ListTasks(ctx, s.OrgID, s.Filter) },
		},
		{
			Name:    ViewTask,
			NeedsID: true,
			Keys:    func(s Scope) []querykey.Key { return keys(querykey.Task(s.ID)) },
			Load:    func(ctx context.Context, s Scope) (any, error) { return r.GetTask(ctx, s.OrgID, s.ID) },
		},
		{
			Name:       ViewWorkOrders,
			NeedsEvent: true,
			Keys:       func(s Scope) []querykey.Key { return keys(querykey.WorkOrdersByEvent(s.OrgID, s.EventID)) },
			Load:       func(ctx context.Context, s Scope) (any, error) { return r.ListWorkOrders(ctx, s.OrgID, s.EventID) },
		},
		{
			Name: ViewAssets,
			Keys: func(s Scope) []querykey.Key { return keys(querykey.AssetsByOrg(s.OrgID, s.Filter)) },
			Load: func(ctx context.Context, s Scope) (any, error) { return r.ListAssets(ctx, s.OrgID, s.Filter) },
		},
		{
			// Kits list their assets, so asset changes refresh them too
			Name: ViewKits,
			Keys: func(s Scope) []querykey.Key {
				return keys(querykey.KitsByOrg(s.OrgID), querykey.AssetsAll(s.OrgID))
			},
			Load: func(ctx context.Context, s Scope) (any, error) { return r.ListKits(ctx, s.OrgID) },
		},
		{
			Name: ViewChecklists,
			Keys: func(s Scope) []querykey.Key { return keys(querykey.ChecklistsByOrg(s.OrgID, s.EventID)) },
			Load: func(ctx context.Context, s Scope) (any, error) { return r.ListChecklists(ctx, s.OrgID, s.EventID) },
		},
		{
			Name: ViewMovements,
			Keys: func(s Scope) []querykey.Key { return keys(querykey.MovementsByOrg(s.OrgID, s.Filter)) },
			Load: func(ctx context.Context, s Scope) (any, error) { return r.ListMovements(ctx, s.OrgID, s.Filter) },
		},
		{
			Name: ViewStaff,
			Keys: func(s Scope) []querykey.Key { return keys(querykey.StaffMembersByOrg(s.OrgID)) },
			Load: func(ctx context.Context, s Scope) (any, error) { return r.ListStaffMembers(ctx, s.OrgID) },
		},
		{
			Name:       ViewAssignments,
			NeedsEvent: true,
			Keys: func(s Scope) []querykey.Key {
				return keys(querykey.AssignmentsByEvent(s.EventID), querykey.StaffMembersByOrg(s.OrgID))
			},
			Load: func(ctx context.Context, s Scope) (any, error) { return r.ListAssignments(ctx, s.OrgID, s.EventID) },
		},
		{
			Name:       ViewCredentials,
			NeedsEvent: true,
			Keys:       func(s Scope) []querykey.Key { return keys(querykey.CredentialsByEvent(s.EventID)) },
			Load:       func(ctx context.Context, s Scope) (any, error) { return r.ListCredentials(ctx, s.OrgID, s.EventID) },
		},
		{
			Name: ViewDashboard,
			Keys: func(s Scope) []querykey.Key { return keys(querykey.Dashboard(s.OrgID, s.EventID)) },
			Load: func(ctx context.Context, s Scope) (any, error) { return r.Dashboard(ctx, s.OrgID, s.EventID) },
		},
	}
}
