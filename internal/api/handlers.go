package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/nkkko/eventops/internal/api/models"
	"github.com/nkkko/eventops/internal/api/response"
	"github.com/nkkko/eventops/internal/api/validation"
	"github.com/nkkko/eventops/internal/logging"
	"github.com/nkkko/eventops/internal/metrics"
	"github.com/nkkko/eventops/internal/views"
	"github.com/nkkko/eventops/pkg/querykey"
)

// fail writes err as an API error and counts it
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := response.Error(w, r, err)

	route := chi.RouteContext(r.Context()).RoutePattern()
	metrics.GetMetrics().APIErrorsTotal.WithLabelValues(route, string(apiErr.Type)).Inc()

	if apiErr.HTTPCode >= http.StatusInternalServerError {
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Str("route", route).Msg("Request failed")
	}
}

// decode parses and validates a request body, writing the error on failure
func (a *API) decode(w http.ResponseWriter, r *http.Request, v validation.Validator) bool {
	if err := validation.ParseAndValidate(r, v); err != nil {
		a.fail(w, r, err)
		return false
	}
	return true
}

// respond writes a successful result or the error
func respond[T any](a *API, w http.ResponseWriter, r *http.Request, status int, v T, err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, r, status, v)
}

func orgID(r *http.Request) string {
	return chi.URLParam(r, "orgID")
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	health := models.HealthResponse{
		Status:       "ready",
		MountedViews: a.views.Mounted(),
	}
	if counter, ok := a.bus.(SubscriptionCounter); ok {
		health.Subscriptions = counter.Len()
	}
	response.JSON(w, r, http.StatusOK, health)
}

// handleInvalidate publishes operator supplied keys. Each key is a slash
// separated path such as "tasks/org-1".
func (a *API) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var req models.InvalidateRequest
	if !a.decode(w, r, &req) {
		return
	}

	keys := make([]querykey.Key, 0, len(req.Keys))
	for _, k := range req.Keys {
		keys = append(keys, querykey.Parse(k))
	}

	a.bus.Publish(r.Context(), keys...)

	logger := logging.FromContext(r.Context())
	logger.Info().
		Strs("keys", req.Keys).
		Msg("Manual invalidation published")

	response.JSON(w, r, http.StatusAccepted, models.InvalidateResponseFromKeys(keys))
}

func (a *API) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if !a.decode(w, r, &req) {
		return
	}
	event, err := a.ops.CreateEvent(r.Context(), orgID(r), req.CreateEventRequest)
	respond(a, w, r, http.StatusCreated, event, err)
}

func (a *API) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var req models.CreateZoneRequest
	if !a.decode(w, r, &req) {
		return
	}
	zone, err := a.ops.CreateZone(r.Context(), orgID(r), req.CreateZoneRequest)
	respond(a, w, r, http.StatusCreated, zone, err)
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if !a.decode(w, r, &req) {
		return
	}
	task, err := a.ops.CreateTask(r.Context(), orgID(r), req.CreateTaskRequest)
	respond(a, w, r, http.StatusCreated, task, err)
}

func (a *API) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTaskStatusRequest
	if !a.decode(w, r, &req) {
		return
	}
	task, err := a.ops.UpdateTaskStatus(r.Context(), orgID(r), chi.URLParam(r, "taskID"), req.UpdateTaskStatusRequest)
	respond(a, w, r, http.StatusOK, task, err)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := a.ops.DeleteTask(r.Context(), orgID(r), chi.URLParam(r, "taskID")); err != nil {
		a.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

func (a *API) handleCreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWorkOrderRequest
	if !a.decode(w, r, &req) {
		return
	}
	wo, err := a.ops.CreateWorkOrder(r.Context(), orgID(r), req.CreateWorkOrderRequest)
	respond(a, w, r, http.StatusCreated, wo, err)
}

func (a *API) handleUpdateWorkOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateWorkOrderStatusRequest
	if !a.decode(w, r, &req) {
		return
	}
	wo, err := a.ops.UpdateWorkOrderStatus(r.Context(), orgID(r), chi.URLParam(r, "workOrderID"), req.UpdateWorkOrderStatusRequest)
	respond(a, w, r, http.StatusOK, wo, err)
}

func (a *API) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssetRequest
	if !a.decode(w, r, &req) {
		return
	}
	asset, err := a.ops.CreateAsset(r.Context(), orgID(r), req.CreateAssetRequest)
	respond(a, w, r, http.StatusCreated, asset, err)
}

func (a *API) handleMoveAsset(w http.ResponseWriter, r *http.Request) {
	var req models.MoveAssetRequest
	if !a.decode(w, r, &req) {
		return
	}
	mv, err := a.ops.MoveAsset(r.Context(), orgID(r), chi.URLParam(r, "assetID"), req.MoveAssetRequest)
	respond(a, w, r, http.StatusCreated, mv, err)
}

func (a *API) handleCreateKit(w http.ResponseWriter, r *http.Request) {
	var req models.CreateKitRequest
	if !a.decode(w, r, &req) {
		return
	}
	kit, err := a.ops.CreateKit(r.Context(), orgID(r), req.CreateKitRequest)
	respond(a, w, r, http.StatusCreated, kit, err)
}

func (a *API) handleCreateChecklist(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChecklistRequest
	if !a.decode(w, r, &req) {
		return
	}
	checklist, err := a.ops.CreateChecklist(r.Context(), orgID(r), req.CreateChecklistRequest)
	respond(a, w, r, http.StatusCreated, checklist, err)
}

func (a *API) handleToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	checklist, err := a.ops.ToggleChecklistItem(r.Context(), orgID(r), chi.URLParam(r, "checklistID"), chi.URLParam(r, "itemID"))
	respond(a, w, r, http.StatusOK, checklist, err)
}

func (a *API) handleCreateStaffMember(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStaffMemberRequest
	if !a.decode(w, r, &req) {
		return
	}
	member, err := a.ops.CreateStaffMember(r.Context(), orgID(r), req.CreateStaffMemberRequest)
	respond(a, w, r, http.StatusCreated, member, err)
}

func (a *API) handleAssignStaff(w http.ResponseWriter, r *http.Request) {
	var req models.AssignStaffRequest
	if !a.decode(w, r, &req) {
		return
	}
	assignment, err := a.ops.AssignStaff(r.Context(), orgID(r), req.AssignStaffRequest)
	respond(a, w, r, http.StatusCreated, assignment, err)
}

func (a *API) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	var req models.IssueCredentialRequest
	if !a.decode(w, r, &req) {
		return
	}
	credential, err := a.ops.IssueCredential(r.Context(), orgID(r), req.IssueCredentialRequest)
	respond(a, w, r, http.StatusCreated, credential, err)
}

func (a *API) handleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	credential, err := a.ops.RevokeCredential(r.Context(), orgID(r), chi.URLParam(r, "credentialID"))
	respond(a, w, r, http.StatusOK, credential, err)
}

func (a *API) handleListViews(w http.ResponseWriter, r *http.Request) {
	names := a.views.Names()
	sort.Strings(names)
	response.JSON(w, r, http.StatusOK, models.ViewListResponse{Views: names})
}

// handleGetView returns a view snapshot, e.g.
// GET /orgs/org-1/views/tasks?filter=active
func (a *API) handleGetView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope := views.Scope{
		OrgID:   orgID(r),
		EventID: q.Get("event"),
		Filter:  q.Get("filter"),
		ID:      q.Get("id"),
	}

	snap, err := a.views.Snapshot(r.Context(), chi.URLParam(r, "view"), scope)
	respond(a, w, r, http.StatusOK, snap, err)
}
