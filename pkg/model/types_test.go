package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskTransitions(t *testing.T) {
	tests := []struct {
		from, to TaskStatus
		allowed  bool
	}{
		{TaskTodo, TaskInProgress, true},
		{TaskTodo, TaskDone, true},
		{TaskInProgress, TaskBlocked, true},
		{TaskBlocked, TaskInProgress, true},
		{TaskBlocked, TaskDone, false},
		{TaskDone, TaskTodo, true},
		{TaskDone, TaskInProgress, false},
		{TaskTodo, TaskStatus("archived"), false},
		{TaskStatus("archived"), TaskTodo, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTaskStatusActive(t *testing.T) {
	assert.True(t, TaskTodo.Active())
	assert.True(t, TaskBlocked.Active())
	assert.False(t, TaskDone.Active())
}

func TestWorkOrderTransitions(t *testing.T) {
	assert.True(t, WorkOrderOpen.CanTransitionTo(WorkOrderClosed))
	assert.True(t, WorkOrderInProgress.CanTransitionTo(WorkOrderOpen))
	assert.True(t, WorkOrderClosed.CanTransitionTo(WorkOrderOpen))
	assert.False(t, WorkOrderClosed.CanTransitionTo(WorkOrderInProgress))
	assert.False(t, WorkOrderOpen.CanTransitionTo(WorkOrderOpen))
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TaskInProgress.Valid())
	assert.False(t, TaskStatus("").Valid())
	assert.True(t, WorkOrderClosed.Valid())
	assert.False(t, WorkOrderStatus("done").Valid())
	assert.True(t, AssetMissing.Valid())
	assert.False(t, AssetCondition("lost").Valid())
	assert.True(t, AccessAllAreas.Valid())
	assert.False(t, AccessLevel("vip").Valid())
}
