package operations

import (
	"context"
	"fmt"
	"sort"

	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/nkkko/eventops/pkg/querykey"
)

// CreateAsset registers an asset. An asset created inside a zone records an
// inbound movement.
func (s *Service) CreateAsset(ctx context.Context, orgID string, req model.CreateAssetRequest) (*model.Asset, error) {
	const op = "create_asset"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	condition := req.Condition
	if condition == "" {
		condition = model.AssetOK
	}
	if !condition.Valid() {
		return nil, s.finish(ctx, op, fmt.Errorf("asset condition %q: %w", condition, ErrInvalidInput))
	}
	if req.ZoneID != "" {
		if _, err := lookup[model.Zone](ctx, s, storage.CollectionZones, orgID, req.ZoneID, "zone"); err != nil {
			return nil, s.finish(ctx, op, err)
		}
	}

	now := s.now()
	asset := model.Asset{
		ID:        s.newID(),
		OrgID:     orgID,
		Name:      req.Name,
		Tag:       req.Tag,
		Condition: condition,
		ZoneID:    req.ZoneID,
		UpdatedAt: now,
	}

	if err := s.put(ctx, storage.CollectionAssets, orgID, asset.ID, asset); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	keys := []querykey.Key{querykey.AssetsAll(orgID), querykey.Dashboard(orgID)}
	if asset.ZoneID != "" {
		mv := model.Movement{
			ID:       s.newID(),
			OrgID:    orgID,
			AssetID:  asset.ID,
			ToZoneID: asset.ZoneID,
			At:       now,
		}
		if err := s.put(ctx, storage.CollectionMovements, orgID, mv.ID, mv); err != nil {
			return nil, s.finish(ctx, op, err)
		}
		keys = append(keys, querykey.MovementsAll(orgID))
	}

	return &asset, s.finish(ctx, op, nil, keys...)
}

// MoveAsset moves an asset to another zone and records the movement
func (s *Service) MoveAsset(ctx context.Context, orgID, assetID string, req model.MoveAssetRequest) (*model.Movement, error) {
	const op = "move_asset"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	asset, err := lookup[model.Asset](ctx, s, storage.CollectionAssets, orgID, assetID, "asset")
	if err != nil {
		return nil, s.finish(ctx, op, err)
	}
	if _, err := lookup[model.Zone](ctx, s, storage.CollectionZones, orgID, req.ToZoneID, "zone"); err != nil {
		return nil, s.finish(ctx, op, err)
	}
	if asset.ZoneID == req.ToZoneID {
		return nil, s.finish(ctx, op, fmt.Errorf("asset %s already in zone %s: %w", asset.ID, req.ToZoneID, ErrConflict))
	}

	now := s.now()
	mv := model.Movement{
		ID:         s.newID(),
		OrgID:      orgID,
		AssetID:    asset.ID,
		FromZoneID: asset.ZoneID,
		ToZoneID:   req.ToZoneID,
		MovedBy:    req.MovedBy,
		At:         now,
	}

	asset.ZoneID = req.ToZoneID
	asset.UpdatedAt = now

	if err := s.put(ctx, storage.CollectionAssets, orgID, asset.ID, asset); err != nil {
		return nil, s.finish(ctx, op, err)
	}
	if err := s.put(ctx, storage.CollectionMovements, orgID, mv.ID, mv); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	keys := []querykey.Key{
		querykey.AssetsAll(orgID),
		querykey.MovementsAll(orgID),
		querykey.Dashboard(orgID),
	}
	if asset.KitID != "" {
		keys = append(keys, querykey.KitsByOrg(orgID))
	}

	return &mv, s.finish(ctx, op, nil, keys...)
}

// CreateKit groups existing assets. An asset belongs to at most one kit.
func (s *Service) CreateKit(ctx context.Context, orgID string, req model.CreateKitRequest) (*model.Kit, error) {
	const op = "create_kit"
	ctx, span := s.begin(ctx, op, orgID)
	defer span.End()

	kit := model.Kit{
		ID:    s.newID(),
		OrgID: orgID,
		Name:  req.Name,
	}

	seen := make(map[string]bool, len(req.AssetIDs))
	assets := make([]model.Asset, 0, len(req.AssetIDs))
	for _, id := range req.AssetIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		asset, err := lookup[model.Asset](ctx, s, storage.CollectionAssets, orgID, id, "asset")
		if err != nil {
			return nil, s.finish(ctx, op, err)
		}
		if asset.KitID != "" {
			return nil, s.finish(ctx, op, fmt.Errorf("asset %s is already in kit %s: %w", asset.ID, asset.KitID, ErrConflict))
		}
		assets = append(assets, asset)
		kit.AssetIDs = append(kit.AssetIDs, id)
	}

	if err := s.put(ctx, storage.CollectionKits, orgID, kit.ID, kit); err != nil {
		return nil, s.finish(ctx, op, err)
	}

	now := s.now()
	for _, asset := range assets {
		asset.KitID = kit.ID
		asset.UpdatedAt = now
		if err := s.put(ctx, storage.CollectionAssets, orgID, asset.ID, asset); err != nil {
			return nil, s.finish(ctx, op, err)
		}
	}

	keys := []querykey.Key{querykey.KitsByOrg(orgID)}
	if len(assets) > 0 {
		keys = append(keys, querykey.AssetsAll(orgID))
	}

	return &kit, s.finish(ctx, op, nil, keys...)
}

// ListAssets returns the assets of an organization. filter is "all" or an
// asset condition.
func (s *Service) ListAssets(ctx context.Context, orgID, filter string) ([]model.Asset, error) {
	if filter == "" || filter == querykey.FilterAll {
		return list[model.Asset](ctx, s, storage.CollectionAssets, orgID, nil)
	}

	condition := model.AssetCondition(filter)
	if !condition.Valid() {
		return nil, fmt.Errorf("asset filter %q: %w", filter, ErrInvalidInput)
	}
	return list(ctx, s, storage.CollectionAssets, orgID, func(a model.Asset) bool {
		return a.Condition == condition
	})
}

// ListKits returns the kits of an organization
func (s *Service) ListKits(ctx context.Context, orgID string) ([]model.Kit, error) {
	return list[model.Kit](ctx, s, storage.CollectionKits, orgID, nil)
}

// ListMovements returns the movements of an organization, oldest first.
// filter is "all", "inbound" or "transfer".
func (s *Service) ListMovements(ctx context.Context, orgID, filter string) ([]model.Movement, error) {
	var keep func(model.Movement) bool
	switch filter {
	case "", querykey.FilterAll:
	case "inbound", "transfer":
		keep = func(m model.Movement) bool { return m.Direction() == filter }
	default:
		return nil, fmt.Errorf("movement filter %q: %w", filter, ErrInvalidInput)
	}

	movements, err := list(ctx, s, storage.CollectionMovements, orgID, keep)
	if err != nil {
		return nil, err
	}
	sortMovements(movements)
	return movements, nil
}

func sortMovements(movements []model.Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		if movements[i].At.Equal(movements[j].At) {
			return movements[i].ID < movements[j].ID
		}
		return movements[i].At.Before(movements[j].At)
	})
}
