package operations

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nkkko/eventops/internal/invalidation"
	"github.com/nkkko/eventops/internal/storage/badger"
	"github.com/nkkko/eventops/internal/storage/memory"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/nkkko/eventops/pkg/querykey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBus keeps every non-empty publish
type recordingBus struct {
	mu        sync.Mutex
	published [][]querykey.Key
}

func (b *recordingBus) Publish(ctx context.Context, keys ...querykey.Key) {
	if len(keys) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, keys)
}

func (b *recordingBus) last() []querykey.Key {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.published) == 0 {
		return nil
	}
	return b.published[len(b.published)-1]
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

var testNow = time.Date(2026, 7, 4, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *recordingBus) {
	t.Helper()

	bus := &recordingBus{}
	n := 0
	svc := NewService(memory.NewStorage(), bus,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	return svc, bus
}

func assertKeys(t *testing.T, want, got []querykey.Key) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("published keys mismatch (-want +got):\n%s", diff)
	}
}

func mustEvent(t *testing.T, svc *Service, org string) *model.Event {
	t.Helper()
	ev, err := svc.CreateEvent(context.Background(), org, model.CreateEventRequest{Name: "Summer Fest"})
	require.NoError(t, err)
	return ev
}

func mustZone(t *testing.T, svc *Service, org, eventID, name string) *model.Zone {
	t.Helper()
	zone, err := svc.CreateZone(context.Background(), org, model.CreateZoneRequest{EventID: eventID, Name: name})
	require.NoError(t, err)
	return zone
}

func TestCreateEventPublishes(t *testing.T) {
	svc, bus := newTestService(t)

	ev := mustEvent(t, svc, "org-1")

	assert.Equal(t, "id-1", ev.ID)
	assert.Equal(t, testNow, ev.CreatedAt)
	assertKeys(t, []querykey.Key{
		querykey.Events("org-1"),
		querykey.Event("id-1"),
		querykey.Dashboard("org-1"),
	}, bus.last())

	events, err := svc.ListEvents(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCreateEventRejectsInvertedRange(t *testing.T) {
	svc, bus := newTestService(t)

	_, err := svc.CreateEvent(context.Background(), "org-1", model.CreateEventRequest{
		Name:     "Backwards",
		StartsAt: testNow,
		EndsAt:   testNow.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, bus.count())
}

func TestCreateZoneRequiresEvent(t *testing.T) {
	svc, bus := newTestService(t)

	_, err := svc.CreateZone(context.Background(), "org-1", model.CreateZoneRequest{EventID: "missing", Name: "Main stage"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, bus.count(), "failed mutation must not publish")
}

func TestCreateZonePublishes(t *testing.T) {
	svc, bus := newTestService(t)
	ev := mustEvent(t, svc, "org-1")

	zone := mustZone(t, svc, "org-1", ev.ID, "Main stage")

	assertKeys(t, []querykey.Key{querykey.ZonesByEvent(ev.ID), querykey.Event(ev.ID)}, bus.last())

	zones, err := svc.ListZones(context.Background(), "org-1", ev.ID)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, zone.ID, zones[0].ID)
}

func TestTaskLifecycle(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "org-1", model.CreateTaskRequest{Title: "Rig lights"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskTodo, task.Status)

	want := []querykey.Key{querykey.TasksAll("org-1"), querykey.Task(task.ID), querykey.Dashboard("org-1")}
	assertKeys(t, want, bus.last())

	task, err = svc.UpdateTaskStatus(ctx, "org-1", task.ID, model.UpdateTaskStatusRequest{Status: model.TaskDone})
	require.NoError(t, err)
	assert.Equal(t, model.TaskDone, task.Status)
	assertKeys(t, want, bus.last())

	require.NoError(t, svc.DeleteTask(ctx, "org-1", task.ID))
	assertKeys(t, want, bus.last())
	assert.Equal(t, 3, bus.count())

	_, err = svc.GetTask(ctx, "org-1", task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTaskStatusSameStatusPublishesNothing(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "org-1", model.CreateTaskRequest{Title: "Sweep"})
	require.NoError(t, err)

	_, err = svc.UpdateTaskStatus(ctx, "org-1", task.ID, model.UpdateTaskStatusRequest{Status: model.TaskTodo})
	require.NoError(t, err)
	assert.Equal(t, 1, bus.count())
}

func TestUpdateTaskStatusRejectsInvalid(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "org-1", model.CreateTaskRequest{Title: "Sweep"})
	require.NoError(t, err)
	_, err = svc.UpdateTaskStatus(ctx, "org-1", task.ID, model.UpdateTaskStatusRequest{Status: model.TaskBlocked})
	require.NoError(t, err)

	_, err = svc.UpdateTaskStatus(ctx, "org-1", task.ID, model.UpdateTaskStatusRequest{Status: model.TaskDone})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateTaskStatus(ctx, "org-1", task.ID, model.UpdateTaskStatusRequest{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, 2, bus.count())
}

func TestListTasksFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := svc.CreateTask(ctx, "org-1", model.CreateTaskRequest{Title: title})
		require.NoError(t, err)
	}
	_, err := svc.UpdateTaskStatus(ctx, "org-1", "id-1", model.UpdateTaskStatusRequest{Status: model.TaskDone})
	require.NoError(t, err)

	all, err := svc.ListTasks(ctx, "org-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.ListTasks(ctx, "org-1", TaskFilterActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	done, err := svc.ListTasks(ctx, "org-1", string(model.TaskDone))
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "id-1", done[0].ID)

	_, err = svc.ListTasks(ctx, "org-1", "bogus")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWorkOrderLifecycle(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()
	ev := mustEvent(t, svc, "org-1")

	wo, err := svc.CreateWorkOrder(ctx, "org-1", model.CreateWorkOrderRequest{EventID: ev.ID, Title: "Fix generator"})
	require.NoError(t, err)
	want := []querykey.Key{querykey.WorkOrdersByEvent("org-1", ev.ID), querykey.Dashboard("org-1")}
	assertKeys(t, want, bus.last())

	wo, err = svc.UpdateWorkOrderStatus(ctx, "org-1", wo.ID, model.UpdateWorkOrderStatusRequest{Status: model.WorkOrderClosed})
	require.NoError(t, err)
	assert.Equal(t, model.WorkOrderClosed, wo.Status)
	assertKeys(t, want, bus.last())

	_, err = svc.UpdateWorkOrderStatus(ctx, "org-1", wo.ID, model.UpdateWorkOrderStatusRequest{Status: model.WorkOrderInProgress})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCreateWorkOrderRejectsForeignZone(t *testing.T) {
	svc, _ := newTestService(t)
	ev1 := mustEvent(t, svc, "org-1")
	ev2 := mustEvent(t, svc, "org-1")
	zone := mustZone(t, svc, "org-1", ev2.ID, "Gate B")

	_, err := svc.CreateWorkOrder(context.Background(), "org-1", model.CreateWorkOrderRequest{
		EventID: ev1.ID,
		ZoneID:  zone.ID,
		Title:   "Fence",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMoveAssetRecordsMovement(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()
	ev := mustEvent(t, svc, "org-1")
	stage := mustZone(t, svc, "org-1", ev.ID, "Stage")
	store := mustZone(t, svc, "org-1", ev.ID, "Store")

	asset, err := svc.CreateAsset(ctx, "org-1", model.CreateAssetRequest{Name: "Speaker", ZoneID: store.ID})
	require.NoError(t, err)
	assert.Equal(t, model.AssetOK, asset.Condition)
	assertKeys(t, []querykey.Key{
		querykey.AssetsAll("org-1"),
		querykey.Dashboard("org-1"),
		querykey.MovementsAll("org-1"),
	}, bus.last())

	mv, err := svc.MoveAsset(ctx, "org-1", asset.ID, model.MoveAssetRequest{ToZoneID: stage.ID, MovedBy: "sam"})
	require.NoError(t, err)
	assert.Equal(t, store.ID, mv.FromZoneID)
	assert.Equal(t, stage.ID, mv.ToZoneID)
	assert.Equal(t, "transfer", mv.Direction())
	assertKeys(t, []querykey.Key{
		querykey.AssetsAll("org-1"),
		querykey.MovementsAll("org-1"),
		querykey.Dashboard("org-1"),
	}, bus.last())

	assets, err := svc.ListAssets(ctx, "org-1", "")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, stage.ID, assets[0].ZoneID)

	inbound, err := svc.ListMovements(ctx, "org-1", "inbound")
	require.NoError(t, err)
	assert.Len(t, inbound, 1)

	all, err := svc.ListMovements(ctx, "org-1", querykey.FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	published := bus.count()
	_, err = svc.MoveAsset(ctx, "org-1", asset.ID, model.MoveAssetRequest{ToZoneID: stage.ID})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, published, bus.count())
}

func TestCreateAssetRejectsUnknownCondition(t *testing.T) {
	svc, bus := newTestService(t)

	_, err := svc.CreateAsset(context.Background(), "org-1", model.CreateAssetRequest{Name: "Cable", Condition: "shiny"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, bus.count())
}

func TestCreateKitClaimsAssets(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	a1, err := svc.CreateAsset(ctx, "org-1", model.CreateAssetRequest{Name: "Mic"})
	require.NoError(t, err)
	a2, err := svc.CreateAsset(ctx, "org-1", model.CreateAssetRequest{Name: "Stand"})
	require.NoError(t, err)

	kit, err := svc.CreateKit(ctx, "org-1", model.CreateKitRequest{Name: "Vocal kit", AssetIDs: []string{a1.ID, a2.ID, a1.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, a2.ID}, kit.AssetIDs)
	assertKeys(t, []querykey.Key{querykey.KitsByOrg("org-1"), querykey.AssetsAll("org-1")}, bus.last())

	_, err = svc.CreateKit(ctx, "org-1", model.CreateKitRequest{Name: "Again", AssetIDs: []string{a2.ID}})
	assert.ErrorIs(t, err, ErrConflict)

	kits, err := svc.ListKits(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, kits, 1)
}

func TestChecklistToggle(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()
	ev := mustEvent(t, svc, "org-1")

	cl, err := svc.CreateChecklist(ctx, "org-1", model.CreateChecklistRequest{
		EventID: ev.ID,
		Name:    "Doors open",
		Items:   []string{"Radios charged", "Fire exits clear"},
	})
	require.NoError(t, err)
	require.Len(t, cl.Items, 2)
	assertKeys(t, []querykey.Key{querykey.ChecklistsByOrg("org-1", ev.ID)}, bus.last())

	cl, err = svc.ToggleChecklistItem(ctx, "org-1", cl.ID, "item-2")
	require.NoError(t, err)
	assert.False(t, cl.Items[0].Done)
	assert.True(t, cl.Items[1].Done)

	_, err = svc.ToggleChecklistItem(ctx, "org-1", cl.ID, "item-9")
	assert.ErrorIs(t, err, ErrNotFound)

	scoped, err := svc.ListChecklists(ctx, "org-1", ev.ID)
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	other, err := svc.ListChecklists(ctx, "org-1", "other-event")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStaffAssignmentAndCredentials(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()
	ev := mustEvent(t, svc, "org-1")

	member, err := svc.CreateStaffMember(ctx, "org-1", model.CreateStaffMemberRequest{Name: "Ada", Role: "steward"})
	require.NoError(t, err)
	assertKeys(t, []querykey.Key{querykey.StaffMembersByOrg("org-1")}, bus.last())

	_, err = svc.AssignStaff(ctx, "org-1", model.AssignStaffRequest{EventID: ev.ID, StaffMemberID: member.ID})
	require.NoError(t, err)
	assertKeys(t, []querykey.Key{querykey.AssignmentsByEvent(ev.ID), querykey.Dashboard("org-1", ev.ID)}, bus.last())

	_, err = svc.AssignStaff(ctx, "org-1", model.AssignStaffRequest{EventID: ev.ID, StaffMemberID: member.ID})
	assert.ErrorIs(t, err, ErrConflict)

	cred, err := svc.IssueCredential(ctx, "org-1", model.IssueCredentialRequest{
		EventID:       ev.ID,
		StaffMemberID: member.ID,
		Level:         model.AccessBackstage,
	})
	require.NoError(t, err)
	assertKeys(t, []querykey.Key{querykey.CredentialsByEvent(ev.ID), querykey.Dashboard("org-1", ev.ID)}, bus.last())

	cred, err = svc.RevokeCredential(ctx, "org-1", cred.ID)
	require.NoError(t, err)
	assert.True(t, cred.Revoked)

	_, err = svc.RevokeCredential(ctx, "org-1", cred.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.IssueCredential(ctx, "org-1", model.IssueCredentialRequest{EventID: ev.ID, StaffMemberID: member.ID, Level: "vip"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDashboardCounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ev := mustEvent(t, svc, "org-1")
	zone := mustZone(t, svc, "org-1", ev.ID, "Stage")

	t1, err := svc.CreateTask(ctx, "org-1", model.CreateTaskRequest{EventID: ev.ID, Title: "a"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "org-1", model.CreateTaskRequest{Title: "b"})
	require.NoError(t, err)
	_, err = svc.UpdateTaskStatus(ctx, "org-1", t1.ID, model.UpdateTaskStatusRequest{Status: model.TaskInProgress})
	require.NoError(t, err)

	_, err = svc.CreateWorkOrder(ctx, "org-1", model.CreateWorkOrderRequest{EventID: ev.ID, Title: "w"})
	require.NoError(t, err)
	_, err = svc.CreateAsset(ctx, "org-1", model.CreateAssetRequest{Name: "Amp", Condition: model.AssetDamaged, ZoneID: zone.ID})
	require.NoError(t, err)

	member, err := svc.CreateStaffMember(ctx, "org-1", model.CreateStaffMemberRequest{Name: "Lin"})
	require.NoError(t, err)
	_, err = svc.AssignStaff(ctx, "org-1", model.AssignStaffRequest{EventID: ev.ID, StaffMemberID: member.ID})
	require.NoError(t, err)
	_, err = svc.IssueCredential(ctx, "org-1", model.IssueCredentialRequest{EventID: ev.ID, StaffMemberID: member.ID, Level: model.AccessGeneral})
	require.NoError(t, err)

	org, err := svc.Dashboard(ctx, "org-1", "")
	require.NoError(t, err)
	assert.Equal(t, map[model.TaskStatus]int{model.TaskInProgress: 1, model.TaskTodo: 1}, org.TasksByStatus)
	assert.Equal(t, 1, org.OpenWorkOrders)
	assert.Equal(t, 1, org.DamagedAssets)
	assert.Equal(t, 1, org.MovementsToday)
	assert.Equal(t, 1, org.StaffAssigned)
	assert.Equal(t, 1, org.ActiveCredentials)

	scoped, err := svc.Dashboard(ctx, "org-1", ev.ID)
	require.NoError(t, err)
	assert.Equal(t, map[model.TaskStatus]int{model.TaskInProgress: 1}, scoped.TasksByStatus)
}

func TestMutationInvalidatesMatchingSubscribers(t *testing.T) {
	bus := invalidation.NewBus()
	svc := NewService(memory.NewStorage(), bus)
	ctx := context.Background()

	var activeTasks, dashboard, assets int
	bus.Subscribe([]querykey.Key{querykey.TasksByOrg("org-1", TaskFilterActive)}, func() { activeTasks++ })
	bus.Subscribe([]querykey.Key{querykey.Dashboard("org-1", "ev-9")}, func() { dashboard++ })
	bus.Subscribe([]querykey.Key{querykey.AssetsByOrg("org-1")}, func() { assets++ })

	task, err := svc.CreateTask(ctx, "org-1", model.CreateTaskRequest{Title: "Count wristbands"})
	require.NoError(t, err)
	_, err = svc.UpdateTaskStatus(ctx, "org-1", task.ID, model.UpdateTaskStatusRequest{Status: model.TaskDone})
	require.NoError(t, err)

	assert.Equal(t, 2, activeTasks)
	assert.Equal(t, 2, dashboard)
	assert.Equal(t, 0, assets)
}

func TestListTasksDoesNotLeakAcrossOrgsOnBadger(t *testing.T) {
	config := badger.DefaultConfig()
	config.InMemory = true
	store, err := badger.NewStorage(config)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := NewService(store, &recordingBus{})
	ctx := context.Background()

	_, err = svc.CreateTask(ctx, "acme:rival", model.CreateTaskRequest{Title: "secret"})
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ctx, "acme", "all")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = svc.ListTasks(ctx, "acme:rival", "all")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
