package querykey

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestVocabularyIsDeterministic(t *testing.T) {
	first := Vocabulary("org-1", "ev-1")
	second := Vocabulary("org-1", "ev-1")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("vocabulary not stable (-first +second):\n%s", diff)
	}
}

func TestFilterDefaultsToAll(t *testing.T) {
	assert.True(t, TasksByOrg("org-1").Equal(Of("tasks", "org-1", "all")))
	assert.True(t, TasksByOrg("org-1", "").Equal(Of("tasks", "org-1", "all")))
	assert.True(t, TasksByOrg("org-1", "active").Equal(Of("tasks", "org-1", "active")))
	assert.True(t, AssetsByOrg("org-1").Equal(Of("assets", "org-1", "all")))
	assert.True(t, MovementsByOrg("org-1", "inbound").Equal(Of("movements", "org-1", "inbound")))
}

func TestBroadKeysCoverNarrowKeys(t *testing.T) {
	assert.True(t, HasPrefix(TasksByOrg("org-1", "active"), TasksAll("org-1")))
	assert.True(t, HasPrefix(AssetsByOrg("org-1", "damaged"), AssetsAll("org-1")))
	assert.True(t, HasPrefix(MovementsByOrg("org-1"), MovementsAll("org-1")))
	assert.True(t, HasPrefix(Dashboard("org-1", "ev-1"), Dashboard("org-1")))
	assert.True(t, HasPrefix(ChecklistsByOrg("org-1", "ev-1"), ChecklistsByOrg("org-1")))
}

func TestOptionalEventScope(t *testing.T) {
	assert.Equal(t, 2, Dashboard("org-1").Len())
	assert.Equal(t, 2, Dashboard("org-1", "").Len())
	assert.Equal(t, 3, Dashboard("org-1", "ev-1").Len())
	assert.Equal(t, 2, ChecklistsByOrg("org-1").Len())
}

func TestCategoriesAreDistinct(t *testing.T) {
	keys := Vocabulary("org-1", "ev-1")
	for i := range keys {
		for j := range keys {
			if i == j {
				continue
			}
			assert.False(t, Related(keys[i], keys[j]), "%s and %s should not overlap", keys[i], keys[j])
		}
	}
}
