// Package model holds the entities of the event operations domain and the
// request types of the mutations that change them.
package model

import "time"

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known task status
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskBlocked, TaskDone:
		return true
	}
	return false
}

// Active reports whether a task in this status still needs work
func (s TaskStatus) Active() bool {
	return s == TaskTodo || s == TaskInProgress || s == TaskBlocked
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskTodo:       {TaskInProgress, TaskBlocked, TaskDone},
	TaskInProgress: {TaskTodo, TaskBlocked, TaskDone},
	TaskBlocked:    {TaskTodo, TaskInProgress},
	TaskDone:       {TaskTodo},
}

// CanTransitionTo reports whether a task may move from s to next.
// A blocked task has to be unblocked before it can be completed.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WorkOrderStatus is the lifecycle state of a work order
type WorkOrderStatus string

const (
	WorkOrderOpen       WorkOrderStatus = "open"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderClosed     WorkOrderStatus = "closed"
)

// Valid reports whether s is a known work order status
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case WorkOrderOpen, WorkOrderInProgress, WorkOrderClosed:
		return true
	}
	return false
}

// CanTransitionTo reports whether a work order may move from s to next.
// Closed work orders can only be reopened.
func (s WorkOrderStatus) CanTransitionTo(next WorkOrderStatus) bool {
	switch s {
	case WorkOrderOpen:
		return next == WorkOrderInProgress || next == WorkOrderClosed
	case WorkOrderInProgress:
		return next == WorkOrderOpen || next == WorkOrderClosed
	case WorkOrderClosed:
		return next == WorkOrderOpen
	}
	return false
}

// AssetCondition describes the state of a piece of inventory
type AssetCondition string

const (
	AssetOK      AssetCondition = "ok"
	AssetDamaged AssetCondition = "damaged"
	AssetMissing AssetCondition = "missing"
)

// Valid reports whether c is a known asset condition
func (c AssetCondition) Valid() bool {
	switch c {
	case AssetOK, AssetDamaged, AssetMissing:
		return true
	}
	return false
}

// AccessLevel is the clearance granted by a credential
type AccessLevel string

const (
	AccessGeneral   AccessLevel = "general"
	AccessBackstage AccessLevel = "backstage"
	AccessAllAreas  AccessLevel = "all_areas"
)

// Valid reports whether l is a known access level
func (l AccessLevel) Valid() bool {
	switch l {
	case AccessGeneral, AccessBackstage, AccessAllAreas:
		return true
	}
	return false
}

// Event is a live event run by an organization
type Event struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	Venue     string    `json:"venue,omitempty"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Zone is an area of an event's venue
type Zone struct {
	ID       string `json:"id"`
	OrgID    string `json:"org_id"`
	EventID  string `json:"event_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity,omitempty"`
}

// Task is a unit of work tracked by the organization
type Task struct {
	ID         string     `json:"id"`
	OrgID      string     `json:"org_id"`
	EventID    string     `json:"event_id,omitempty"`
	Title      string     `json:"title"`
	Status     TaskStatus `json:"status"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// WorkOrder is a maintenance or setup request scoped to an event
type WorkOrder struct {
	ID          string          `json:"id"`
	OrgID       string          `json:"org_id"`
	EventID     string          `json:"event_id"`
	ZoneID      string          `json:"zone_id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      WorkOrderStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Asset is a tracked piece of inventory
type Asset struct {
	ID        string         `json:"id"`
	OrgID     string         `json:"org_id"`
	Name      string         `json:"name"`
	Tag       string         `json:"tag,omitempty"`
	Condition AssetCondition `json:"condition"`
	KitID     string         `json:"kit_id,omitempty"`
	ZoneID    string         `json:"zone_id,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Kit groups assets that travel together
type Kit struct {
	ID       string   `json:"id"`
	OrgID    string   `json:"org_id"`
	Name     string   `json:"name"`
	AssetIDs []string `json:"asset_ids,omitempty"`
}

// ChecklistItem is one line of a checklist
type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// Checklist is an ordered list of checks, optionally tied to an event
type Checklist struct {
	ID      string          `json:"id"`
	OrgID   string          `json:"org_id"`
	EventID string          `json:"event_id,omitempty"`
	Name    string          `json:"name"`
	Items   []ChecklistItem `json:"items"`
}

// Movement records an asset changing zone
type Movement struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	AssetID    string    `json:"asset_id"`
	FromZoneID string    `json:"from_zone_id,omitempty"`
	ToZoneID   string    `json:"to_zone_id"`
	MovedBy    string    `json:"moved_by,omitempty"`
	At         time.Time `json:"at"`
}

// Direction classifies a movement: "inbound" when the asset had no zone yet,
// "transfer" otherwise. Used as the movement list filter.
func (m Movement) Direction() string {
	if m.FromZoneID == "" {
		return "inbound"
	}
	return "transfer"
}

// StaffMember is a person working for the organization
type StaffMember struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// Assignment places a staff member in a zone for an event
type Assignment struct {
	ID            string    `json:"id"`
	OrgID         string    `json:"org_id"`
	EventID       string    `json:"event_id"`
	StaffMemberID string    `json:"staff_member_id"`
	ZoneID        string    `json:"zone_id,omitempty"`
	Shift         string    `json:"shift,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Credential grants a staff member access for an event
type Credential struct {
	ID            string      `json:"id"`
	OrgID         string      `json:"org_id"`
	EventID       string      `json:"event_id"`
	StaffMemberID string      `json:"staff_member_id"`
	Level         AccessLevel `json:"level"`
	Revoked       bool        `json:"revoked"`
	IssuedAt      time.Time   `json:"issued_at"`
}

// DashboardSummary aggregates counts for an organization or one event
type DashboardSummary struct {
	OrgID             string             `json:"org_id"`
	EventID           string             `json:"event_id,omitempty"`
	TasksByStatus     map[TaskStatus]int `json:"tasks_by_status"`
	OpenWorkOrders    int                `json:"open_work_orders"`
	DamagedAssets     int                `json:"damaged_assets"`
	MovementsToday    int                `json:"movements_today"`
	StaffAssigned     int                `json:"staff_assigned"`
	ActiveCredentials int                `json:"active_credentials"`
	GeneratedAt       time.Time          `json:"generated_at"`
}
