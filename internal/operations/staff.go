package operations

import (
	"context"
	"fmt"

	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/nkkko/eventops/pkg/querykey"
)

// CreateStaffMember adds a person to the organization roster
func (s *Service) CreateStaffMember(ctx context.Context, orgID string, req model.CreateStaffMemberRequest) (*model.StaffMember, error) {
	const op = "create_staff_member"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	member := model.StaffMember{
		ID:    s.newID(),
		OrgID: orgID,
		Name:  req.Name,
		Role:  req.Role,
		Email: req.Email,
	}

	if err := s.put(ctx, storage.CollectionStaff, orgID, member.ID, member); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &member, s.finish(ctx, op, nil, querykey.StaffMembersByOrg(orgID))
}

// AssignStaff places a staff member for an event. A member is assigned at
// most once per event.
func (s *Service) AssignStaff(ctx context.Context, orgID string, req model.AssignStaffRequest) (*model.Assignment, error) {
	const op = "assign_staff"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	if _, err := lookup[model.Event](ctx, s, storage.CollectionEvents, orgID, req.EventID, "event"); err != nil {
		return nil, s.finish(ctx, op, err)
	}
	if _, err := lookup[model.StaffMember](ctx, s, storage.CollectionStaff, orgID, req.StaffMemberID, "staff member"); err != nil {
		return nil, s.finish(ctx, op, err)
	}
	if req.ZoneID != "" {
		zone, err := lookup[model.Zone](ctx, s, storage.CollectionZones, orgID, req.ZoneID, "zone")
		if err != nil {
			return nil, s.finish(ctx, op, err)
		}
		if zone.EventID != req.EventID {
			return nil, s.finish(ctx, op, fmt.Errorf("zone %s belongs to another event: %w", zone.ID, ErrInvalidInput))
		}
	}

	existing, err := s.ListAssignments(ctx, orgID, req.EventID)
	if err != nil {
		return nil, s.finish(ctx, op, err)
	}
	for _, a := range existing {
		if a.StaffMemberID == req.StaffMemberID {
			return nil, s.finish(ctx, op, fmt.Errorf("staff member %s already assigned to event %s: %w", req.StaffMemberID, req.EventID, ErrConflict))
		}
	}

	assignment := model.Assignment{
		ID:            s.newID(),
		OrgID:         orgID,
		EventID:       req.EventID,
		StaffMemberID: req.StaffMemberID,
		ZoneID:        req.ZoneID,
		Shift:         req.Shift,
		CreatedAt:     s.now(),
	}

	if err := s.put(ctx, storage.CollectionAssignments, orgID, assignment.ID, assignment); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &assignment, s.finish(ctx, op, nil,
		querykey.AssignmentsByEvent(assignment.EventID),
		querykey.Dashboard(orgID, assignment.EventID),
	)
}

// IssueCredential grants a staff member access for an event
func (s *Service) IssueCredential(ctx context.Context, orgID string, req model.IssueCredentialRequest) (*model.Credential, error) {
	const op = "issue_credential"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	if !req.Level.Valid() {
		return nil, s.finish(ctx, op, fmt.Errorf("access level %q: %w", req.Level, ErrInvalidInput))
	}
	if _, err := lookup[model.Event](ctx, s, storage.CollectionEvents, orgID, req.EventID, "event"); err != nil {
		return nil, s.finish(ctx, op, err)
	}
	if _, err := lookup[model.StaffMember](ctx, s, storage.CollectionStaff, orgID, req.StaffMemberID, "staff member"); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	credential := model.Credential{
		ID:            s.newID(),
		OrgID:         orgID,
		EventID:       req.EventID,
		StaffMemberID: req.StaffMemberID,
		Level:         req.Level,
		IssuedAt:      s.now(),
	}

	if err := s.put(ctx, storage.CollectionCredentials, orgID, credential.ID, credential); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &credential, s.finish(ctx, op, nil,
		querykey.CredentialsByEvent(credential.EventID),
		querykey.Dashboard(orgID, credential.EventID),
	)
}

// RevokeCredential withdraws a credential. Revoking twice is an invalid
// transition.
func (s *Service) RevokeCredential(ctx context.Context, orgID, credentialID string) (*model.Credential, error) {
	const op = "revoke_credential"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	credential, err := lookup[model.Credential](ctx, s, storage.CollectionCredentials, orgID, credentialID, "credential")
	if err != nil {
		return nil, s.finish(ctx, op, err)
	}
	if credential.Revoked {
		return nil, s.finish(ctx, op, fmt.Errorf("credential %s already revoked: %w", credential.ID, ErrInvalidTransition))
	}

	credential.Revoked = true

	if err := s.put(ctx, storage.CollectionCredentials, orgID, credential.ID, credential); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	return &credential, s.finish(ctx, op, nil,
		querykey.CredentialsByEvent(credential.EventID),
		querykey.Dashboard(orgID, credential.EventID),
	)
}

// ListStaffMembers returns the roster of an organization
func (s *Service) ListStaffMembers(ctx context.Context, orgID string) ([]model.StaffMember, error) {
	return list[model.StaffMember](ctx, s, storage.CollectionStaff, orgID, nil)
}

// ListAssignments returns the assignments of an event
func (s *Service) ListAssignments(ctx context.Context, orgID, eventID string) ([]model.Assignment, error) {
	return list(ctx, s, storage.CollectionAssignments, orgID, func(a model.Assignment) bool {
		return a.EventID == eventID
	})
}

// ListCredentials returns the credentials issued for an event
func (s *Service) ListCredentials(ctx context.Context, orgID, eventID string) ([]model.Credential, error) {
	return list(ctx, s, storage.CollectionCredentials, orgID, func(c model.Credential) bool {
		return c.EventID == eventID
	})
}
