package model

import "time"

// CreateEventRequest creates an event
type CreateEventRequest struct {
	Name     string    `json:"name"`
	Venue    string    `json:"venue,omitempty"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// CreateZoneRequest adds a zone to an event
type CreateZoneRequest struct {
	EventID  string `json:"event_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity,omitempty"`
}

// CreateTaskRequest creates a task
type CreateTaskRequest struct {
	EventID    string     `json:"event_id,omitempty"`
	Title      string     `json:"title"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

// UpdateTaskStatusRequest moves a task to a new status
type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status"`
}

// CreateWorkOrderRequest opens a work order
type CreateWorkOrderRequest struct {
	EventID     string `json:"event_id"`
	ZoneID      string `json:"zone_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateWorkOrderStatusRequest moves a work order to a new status
type UpdateWorkOrderStatusRequest struct {
	Status WorkOrderStatus `json:"status"`
}

// CreateAssetRequest registers an asset
type CreateAssetRequest struct {
	Name      string         `json:"name"`
	Tag       string         `json:"tag,omitempty"`
	Condition AssetCondition `json:"condition,omitempty"`
	ZoneID    string         `json:"zone_id,omitempty"`
}

// MoveAssetRequest moves an asset to another zone
type MoveAssetRequest struct {
	ToZoneID string `json:"to_zone_id"`
	MovedBy  string `json:"moved_by,omitempty"`
}

// CreateKitRequest creates a kit from existing assets
type CreateKitRequest struct {
	Name     string   `json:"name"`
	AssetIDs []string `json:"asset_ids,omitempty"`
}

// CreateChecklistRequest creates a checklist
type CreateChecklistRequest struct {
	EventID string   `json:"event_id,omitempty"`
	Name    string   `json:"name"`
	Items   []string `json:"items"`
}

// CreateStaffMemberRequest adds a staff member
type CreateStaffMemberRequest struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// AssignStaffRequest assigns a staff member for an event
type AssignStaffRequest struct {
	EventID       string `json:"event_id"`
	StaffMemberID string `json:"staff_member_id"`
	ZoneID        string `json:"zone_id,omitempty"`
	Shift         string `json:"shift,omitempty"`
}

// IssueCredentialRequest issues a credential for an event
type IssueCredentialRequest struct {
	EventID       string      `json:"event_id"`
	StaffMemberID string      `json:"staff_member_id"`
	Level         AccessLevel `json:"level"`
}

// InvalidateRequest announces keys given as slash separated paths
type InvalidateRequest struct {
	Keys []string `json:"keys"`
}
