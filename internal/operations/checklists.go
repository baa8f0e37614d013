package operations

import (
	"context"
	"fmt"

	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/nkkko/eventops/pkg/querykey"
)

// CreateChecklist creates a checklist with one unchecked item per label
func (s *Service) CreateChecklist(ctx context.Context, orgID string, req model.CreateChecklistRequest) (*model.Checklist, error) {
	const op = "create_checklist"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	if req.EventID != "" {
		if _, err := lookup[model.Event](ctx, s, storage.CollectionEvents, orgID, req.EventID, "event"); err != nil {
			return nil, s.finish(ctx, op, err)
		}
	}

	checklist := model.Checklist{
		ID:      s.newID(),
		OrgID:   orgID,
		EventID: req.EventID,
		Name:    req.Name,
		Items:   make([]model.ChecklistItem, 0, len(req.Items)),
	}
	for i, label := range req.Items {
		checklist.Items = append(checklist.Items, model.ChecklistItem{
			ID:    fmt.Sprintf("item-%d", i+1),
			Label: label,
		})
	}

	if err := s.put(ctx, storage.CollectionChecklists, orgID, checklist.ID, checklist); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &checklist, s.finish(ctx, op, nil, querykey.ChecklistsByOrg(orgID, checklist.EventID))
}

// ToggleChecklistItem flips the done flag of one item
func (s *Service) ToggleChecklistItem(ctx context.Context, orgID, checklistID, itemID string) (*model.Checklist, error) {
	const op = "toggle_checklist_item"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	checklist, err := lookup[model.Checklist](ctx, s, storage.CollectionChecklists, orgID, checklistID, "checklist")
	if err != nil {
		return nil, s.finish(ctx, op, err)
	}

	found := false
	for i := range checklist.Items {
		if checklist.Items[i].ID == itemID {
			checklist.Items[i].Done = !checklist.Items[i].Done
			found = true
			break
		}
	}
	if !found {
		return nil, s.finish(ctx, op, fmt.Errorf("checklist item %s: %w", itemID, ErrNotFound))
	}

	if err := s.put(ctx, storage.CollectionChecklists, orgID, checklist.ID, checklist); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &checklist, s.finish(ctx, op, nil, querykey.ChecklistsByOrg(orgID, checklist.EventID))
}

// ListChecklists returns the checklists of an organization, or of one event
// when eventID is set
func (s *Service) ListChecklists(ctx context.Context, orgID, eventID string) ([]model.Checklist, error) {
	if eventID == "" {
		return list[model.Checklist](ctx, s, storage.CollectionChecklists, orgID, nil)
	}
	return list(ctx, s, storage.CollectionChecklists, orgID, func(c model.Checklist) bool {
		return c.EventID == eventID
	})
}
