package querykey

// FilterAll is the filter discriminator used when a caller does not narrow a
// list.
const FilterAll = "all"

// Category labels, always the first segment of a key.
const (
	CategoryEvents      = "events"
	CategoryEvent       = "event"
	CategoryZones       = "zones"
	CategoryTasks       = "tasks"
	CategoryTask        = "task"
	CategoryWorkOrders  = "work-orders"
	CategoryAssets      = "assets"
	CategoryKits        = "kits"
	CategoryChecklists  = "checklists"
	CategoryMovements   = "movements"
	CategoryStaff       = "staff-members"
	CategoryAssignments = "assignments"
	CategoryCredentials = "credentials"
	CategoryDashboard   = "dashboard"
)

func filterOr(filter []string) string {
	if len(filter) == 0 || filter[0] == "" {
		return FilterAll
	}
	return filter[0]
}

// Events is the key for the list of events of an organization.
func Events(orgID string) Key {
	return Of(CategoryEvents, orgID)
}

// Event is the key for a single event.
func Event(eventID string) Key {
	return Of(CategoryEvent, eventID)
}

// ZonesByEvent is the key for the zones of an event.
func ZonesByEvent(eventID string) Key {
	return Of(CategoryZones, eventID)
}

// TasksByOrg is the key for an organization's task list, optionally narrowed
// by a filter ("active", "done", ...).
func TasksByOrg(orgID string, filter ...string) Key {
	return Of(CategoryTasks, orgID, filterOr(filter))
}

// TasksAll is the broad key covering every filtered task list of an
// organization.
func TasksAll(orgID string) Key {
	return Of(CategoryTasks, orgID)
}

// Task is the key for a single task.
func Task(taskID string) Key {
	return Of(CategoryTask, taskID)
}

// WorkOrdersByEvent is the key for the work orders of an event.
func WorkOrdersByEvent(orgID, eventID string) Key {
	return Of(CategoryWorkOrders, orgID, eventID)
}

// AssetsByOrg is the key for an organization's assets, optionally filtered.
func AssetsByOrg(orgID string, filter ...string) Key {
	return Of(CategoryAssets, orgID, filterOr(filter))
}

// AssetsAll is the broad key covering every filtered asset list.
func AssetsAll(orgID string) Key {
	return Of(CategoryAssets, orgID)
}

// KitsByOrg is the key for an organization's kits.
func KitsByOrg(orgID string) Key {
	return Of(CategoryKits, orgID)
}

// ChecklistsByOrg is the key for an organization's checklists. With an event
// id the key narrows to the checklists of that event.
func ChecklistsByOrg(orgID string, eventID ...string) Key {
	if len(eventID) == 0 || eventID[0] == "" {
		return Of(CategoryChecklists, orgID)
	}
	return Of(CategoryChecklists, orgID, eventID[0])
}

// MovementsByOrg is the key for an organization's asset movements, optionally
// filtered.
func MovementsByOrg(orgID string, filter ...string) Key {
	return Of(CategoryMovements, orgID, filterOr(filter))
}

// MovementsAll is the broad key covering every filtered movement list.
func MovementsAll(orgID string) Key {
	return Of(CategoryMovements, orgID)
}

// StaffMembersByOrg is the key for an organization's staff roster.
func StaffMembersByOrg(orgID string) Key {
	return Of(CategoryStaff, orgID)
}

// AssignmentsByEvent is the key for the staff assignments of an event.
func AssignmentsByEvent(eventID string) Key {
	return Of(CategoryAssignments, eventID)
}

// CredentialsByEvent is the key for the credentials issued for an event.
func CredentialsByEvent(eventID string) Key {
	return Of(CategoryCredentials, eventID)
}

// Dashboard is the aggregate key summarising an organization. With an event
// id it narrows to that event's dashboard.
func Dashboard(orgID string, eventID ...string) Key {
	if len(eventID) == 0 || eventID[0] == "" {
		return Of(CategoryDashboard, orgID)
	}
	return Of(CategoryDashboard, orgID, eventID[0])
}

// Vocabulary returns one key of every category for the given scope, in a
// stable order. Used by tooling that lists what a scope can subscribe to.
func Vocabulary(orgID, eventID string) []Key {
	return []Key{
		Events(orgID),
		Event(eventID),
		ZonesByEvent(eventID),
		TasksByOrg(orgID),
		WorkOrdersByEvent(orgID, eventID),
		AssetsByOrg(orgID),
		KitsByOrg(orgID),
		ChecklistsByOrg(orgID, eventID),
		MovementsByOrg(orgID),
		StaffMembersByOrg(orgID),
		AssignmentsByEvent(eventID),
		CredentialsByEvent(eventID),
		Dashboard(orgID, eventID),
	}
}
