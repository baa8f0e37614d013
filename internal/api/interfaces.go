package api

import (
	"context"

	"github.com/nkkko/eventops/internal/views"
	"github.com/nkkko/eventops/pkg/model"
)

// Operations defines the mutations the API exposes
type Operations interface {
	CreateEvent(ctx context.Context, orgID string, req model.CreateEventRequest) (*model.Event, error)
	CreateZone(ctx context.Context, orgID string, req model.CreateZoneRequest) (*model.Zone, error)
	CreateTask(ctx context.Context, orgID string, req model.CreateTaskRequest) (*model.Task, error)
	UpdateTaskStatus(ctx context.Context, orgID, taskID string, req model.UpdateTaskStatusRequest) (*model.Task, error)
	DeleteTask(ctx context.Context, orgID, taskID string) error
	CreateWorkOrder(ctx context.Context, orgID string, req model.CreateWorkOrderRequest) (*model.WorkOrder, error)
	UpdateWorkOrderStatus(ctx context.Context, orgID, workOrderID string, req model.UpdateWorkOrderStatusRequest) (*model.WorkOrder, error)
	CreateAsset(ctx context.Context, orgID string, req model.CreateAssetRequest) (*model.Asset, error)
	MoveAsset(ctx context.Context, orgID, assetID string, req model.MoveAssetRequest) (*model.Movement, error)
	CreateKit(ctx context.Context, orgID string, req model.CreateKitRequest) (*model.Kit, error)
	CreateChecklist(ctx context.Context, orgID string, req model.CreateChecklistRequest) (*model.Checklist, error)
	ToggleChecklistItem(ctx context.Context, orgID, checklistID, itemID string) (*model.Checklist, error)
	CreateStaffMember(ctx context.Context, orgID string, req model.CreateStaffMemberRequest) (*model.StaffMember, error)
	AssignStaff(ctx context.Context, orgID string, req model.AssignStaffRequest) (*model.Assignment, error)
	IssueCredential(ctx context.Context, orgID string, req model.IssueCredentialRequest) (*model.Credential, error)
	RevokeCredential(ctx context.Context, orgID, credentialID string) (*model.Credential, error)
}

// ViewSource serves view snapshots
type ViewSource interface {
	Snapshot(ctx context.Context, name string, scope views.Scope) (*views.Snapshot, error)
	Names() []string
	Mounted() int
}

// SubscriptionCounter reports the number of live bus subscriptions
type SubscriptionCounter interface {
	Len() int
}
