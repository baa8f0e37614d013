package operations

import (
	"context"
	"fmt"

	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/nkkko/eventops/pkg/querykey"
)

// Task list filters besides the individual statuses
const (
	TaskFilterActive = "active"
)

// taskKeys are the keys touched by any change to a task. The broad task key
// reaches every filtered task list of the organization.
func taskKeys(t model.Task) []querykey.Key {
	return []querykey.Key{
		querykey.TasksAll(t.OrgID),
		querykey.Task(t.ID),
		querykey.Dashboard(t.OrgID),
	}
}

// CreateTask creates a task, optionally tied to an event
func (s *Service) CreateTask(ctx context.Context, orgID string, req model.CreateTaskRequest) (*model.Task, error) {
	const op = "create_task"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	if req.EventID != "" {
		if _, err := lookup[model.Event](ctx, s, storage.CollectionEvents, orgID, req.EventID, "event"); err != nil {
			return nil, s.finish(ctx, op, err)
		}
	}
	if req.AssigneeID != "" {
		if _, err := lookup[model.StaffMember](ctx, s, storage.CollectionStaff, orgID, req.AssigneeID, "staff member"); err != nil {
			return nil, s.finish(ctx, op, err)
		}
	}

	now := s.now()
	task := model.Task{
		ID:         s.newID(),
		OrgID:      orgID,
		EventID:    req.EventID,
		Title:      req.Title,
		Status:     model.TaskTodo,
		AssigneeID: req.AssigneeID,
		DueAt:      req.DueAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.put(ctx, storage.CollectionTasks, orgID, task.ID, task); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &task, s.finish(ctx, op, nil, taskKeys(task)...)
}

// UpdateTaskStatus moves a task to a new status. Setting the current status
// again is accepted and publishes nothing.
func (s *Service) UpdateTaskStatus(ctx context.Context, orgID, taskID string, req model.UpdateTaskStatusRequest) (*model.Task, error) {
	const op = "update_task_status"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	if !req.Status.Valid() {
		return nil, s.finish(ctx, op, fmt.Errorf("task status %q: %w", req.Status, ErrInvalidInput))
	}

	task, err := lookup[model.Task](ctx, s, storage.CollectionTasks, orgID, taskID, "task")
	if err != nil {
		return nil, s.finish(ctx, op, err)
	}

	if task.Status == req.Status {
		return &task, s.finish(ctx, op, nil)
	}
	if !task.Status.CanTransitionTo(req.Status) {
		return nil, s.finish(ctx, op, fmt.Errorf("task %s from %s to %s: %w", taskID, task.Status, req.Status, ErrInvalidTransition))
	}

	task.Status = req.Status
	task.UpdatedAt = s.now()

	if err := s.put(ctx, storage.CollectionTasks, orgID, task.ID, task); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &task, s.finish(ctx, op, nil, taskKeys(task)...)
}

// DeleteTask removes a task
func (s *Service) DeleteTask(ctx context.Context, orgID, taskID string) error {
	const op = "delete_task"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	task, err := lookup[model.Task](ctx, s, storage.CollectionTasks, orgID, taskID, "task")
	if err != nil {
		return s.finish(ctx, op, err)
	}

	if err := s.delete(ctx, storage.CollectionTasks, orgID, taskID); err != nil {
		return s.finish(ctx, op, err)
	}

	return s.finish(ctx, op, nil, taskKeys(task)...)
}

// GetTask returns one task
func (s *Service) GetTask(ctx context.Context, orgID, taskID string) (*model.Task, error) {
	task, err := lookup[model.Task](ctx, s, storage.CollectionTasks, orgID, taskID, "task")
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns the tasks of an organization. filter is "all",
// "active" or a task status.
func (s *Service) ListTasks(ctx context.Context, orgID, filter string) ([]model.Task, error) {
	switch filter {
	case "", querykey.FilterAll:
		return list[model.Task](ctx, s, storage.CollectionTasks, orgID, nil)
	case TaskFilterActive:
		return list(ctx, s, storage.CollectionTasks, orgID, func(t model.Task) bool {
			return t.Status.Active()
		})
	}

	status := model.TaskStatus(filter)
	if !status.Valid() {
		return nil, fmt.Errorf("task filter %q: %w", filter, ErrInvalidInput)
	}
	return list(ctx, s, storage.CollectionTasks, orgID, func(t model.Task) bool {
		return t.Status == status
	})
}
