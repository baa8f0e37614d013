package models

import (
	"strings"

	"github.com/nkkko/eventops/internal/api/errors"
	"github.com/nkkko/eventops/internal/api/validation"
	"github.com/nkkko/eventops/pkg/model"
)

const maxNameLength = 200

// CreateEventRequest is the request to create an event
type CreateEventRequest struct {
	model.CreateEventRequest
}

// Validate validates the request
func (r *CreateEventRequest) Validate() error {
	return validation.First(
		validation.Required("name", r.Name),
		validation.MaxLength("name", r.Name, maxNameLength),
	)
}

// CreateZoneRequest is the request to add a zone to an event
type CreateZoneRequest struct {
	model.CreateZoneRequest
}

// Validate validates the request
func (r *CreateZoneRequest) Validate() error {
	return validation.First(
		validation.Required("event_id", r.EventID),
		validation.Required("name", r.Name),
		validation.Min("capacity", r.Capacity, 0),
	)
}

// CreateTaskRequest is the request to create a task
type CreateTaskRequest struct {
	model.CreateTaskRequest
}

// Validate validates the request
func (r *CreateTaskRequest) Validate() error {
	return validation.First(
		validation.Required("title", r.Title),
		validation.MaxLength("title", r.Title, maxNameLength),
	)
}

// UpdateTaskStatusRequest is the request to move a task
type UpdateTaskStatusRequest struct {
	model.UpdateTaskStatusRequest
}

// Validate validates the request
func (r *UpdateTaskStatusRequest) Validate() error {
	return validation.OneOf("status", r.Status,
		model.TaskTodo, model.TaskInProgress, model.TaskBlocked, model.TaskDone)
}

// CreateWorkOrderRequest is the request to open a work order
type CreateWorkOrderRequest struct {
	model.CreateWorkOrderRequest
}

// Validate validates the request
func (r *CreateWorkOrderRequest) Validate() error {
	return validation.First(
		validation.Required("event_id", r.EventID),
		validation.Required("title", r.Title),
	)
}

// UpdateWorkOrderStatusRequest is the request to move a work order
type UpdateWorkOrderStatusRequest struct {
	model.UpdateWorkOrderStatusRequest
}

// Validate validates the request
func (r *UpdateWorkOrderStatusRequest) Validate() error {
	return validation.OneOf("status", r.Status,
		model.WorkOrderOpen, model.WorkOrderInProgress, model.WorkOrderClosed)
}

// CreateAssetRequest is the request to register an asset
type CreateAssetRequest struct {
	model.CreateAssetRequest
}

// Validate validates the request
func (r *CreateAssetRequest) Validate() error {
	if err := validation.Required("name", r.Name); err != nil {
		return err
	}
	if r.Condition == "" {
		return nil
	}
	return validation.OneOf("condition", r.Condition, model.AssetOK, model.AssetDamaged, model.AssetMissing)
}

// MoveAssetRequest is the request to move an asset
type MoveAssetRequest struct {
	model.MoveAssetRequest
}

// Validate validates the request
func (r *MoveAssetRequest) Validate() error {
	return validation.Required("to_zone_id", r.ToZoneID)
}

// CreateKitRequest is the request to create a kit
type CreateKitRequest struct {
	model.CreateKitRequest
}

// Validate validates the request
func (r *CreateKitRequest) Validate() error {
	return validation.Required("name", r.Name)
}

// CreateChecklistRequest is the request to create a checklist
type CreateChecklistRequest struct {
	model.CreateChecklistRequest
}

// Validate validates the request
func (r *CreateChecklistRequest) Validate() error {
	if err := validation.Required("name", r.Name); err != nil {
		return err
	}
	if len(r.Items) == 0 {
		return errors.ValidationError("missing_items", "At least one item is required")
	}
	for _, item := range r.Items {
		if strings.TrimSpace(item) == "" {
			return errors.ValidationError("empty_item", "Checklist items must not be empty")
		}
	}
	return nil
}

// CreateStaffMemberRequest is the request to add a staff member
type CreateStaffMemberRequest struct {
	model.CreateStaffMemberRequest
}

// Validate validates the request
func (r *CreateStaffMemberRequest) Validate() error {
	return validation.Required("name", r.Name)
}

// AssignStaffRequest is the request to assign a staff member
type AssignStaffRequest struct {
	model.AssignStaffRequest
}

// Validate validates the request
func (r *AssignStaffRequest) Validate() error {
	return validation.First(
		validation.Required("event_id", r.EventID),
		validation.Required("staff_member_id", r.StaffMemberID),
	)
}

// IssueCredentialRequest is the request to issue a credential
type IssueCredentialRequest struct {
	model.IssueCredentialRequest
}

// Validate validates the request
func (r *IssueCredentialRequest) Validate() error {
	return validation.First(
		validation.Required("event_id", r.EventID),
		validation.Required("staff_member_id", r.StaffMemberID),
		validation.OneOf("level", r.Level, model.AccessGeneral, model.AccessBackstage, model.AccessAllAreas),
	)
}

// InvalidateRequest is the request to publish keys by hand
type InvalidateRequest struct {
	model.InvalidateRequest
}

// Validate validates the request
func (r *InvalidateRequest) Validate() error {
	if len(r.Keys) == 0 {
		return errors.ValidationError("missing_keys", "At least one key is required")
	}
	for _, k := range r.Keys {
		if strings.Trim(k, "/") == "" {
			return errors.ValidationError("empty_key", "Keys must have at least one segment")
		}
	}
	return nil
}
