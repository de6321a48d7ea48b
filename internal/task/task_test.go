package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/state"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

// sampleForest builds:
//
//	0 Inbox
//	├── 1 Sync wallet
//	│   └── 3 Export keys
//	└── 2 Sync tasks.json
//	4 Groceries
func sampleForest() []*Task {
	return []*Task{
		{ID: 0, Name: "Inbox", State: state.Todo, Subtasks: []*Task{
			{ID: 1, Name: "Sync wallet", State: state.CurrentlyDoing, Subtasks: []*Task{
				{ID: 3, Name: "Export keys", Description: "backup the seed", State: state.Todo},
			}},
			{ID: 2, Name: "Sync tasks.json", State: state.Done},
		}},
		{ID: 4, Name: "Groceries", State: state.Todo, Priority: intPtr(2)},
	}
}

func TestWalk_PreOrderWithAncestors(t *testing.T) {
	var order []int
	paths := map[int][]int{}
	Walk(sampleForest(), func(t *Task, ancestors []int) bool {
		order = append(order, t.ID)
		paths[t.ID] = append([]int{}, ancestors...)
		return true
	})

	assert.Equal(t, []int{0, 1, 3, 2, 4}, order)
	assert.Empty(t, paths[0])
	assert.Equal(t, []int{0}, paths[1])
	assert.Equal(t, []int{0, 1}, paths[3])
	assert.Equal(t, []int{0}, paths[2])
	assert.Empty(t, paths[4])
}

func TestWalk_StopsEarly(t *testing.T) {
	var seen []int
	Walk(sampleForest(), func(t *Task, _ []int) bool {
		seen = append(seen, t.ID)
		return t.ID != 3
	})
	assert.Equal(t, []int{0, 1, 3}, seen)
}

func TestFindWithPath(t *testing.T) {
	forest := sampleForest()

	found, path := FindWithPath(forest, 3)
	require.NotNil(t, found)
	assert.Equal(t, "Export keys", found.Name)
	assert.Equal(t, []int{0, 1}, path)

	assert.Nil(t, Find(forest, 99))
}

func TestIDsCountFlatten(t *testing.T) {
	forest := sampleForest()
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, IDs(forest))
	assert.Equal(t, 5, Count(forest))
	assert.Len(t, Flatten(forest), 5)
	assert.Equal(t, 0, Count(nil))
}

func TestContainsAndDescendants(t *testing.T) {
	root := sampleForest()[0]
	assert.True(t, root.Contains(0))
	assert.True(t, root.Contains(3))
	assert.False(t, root.Contains(4))
	assert.Len(t, root.Descendants(), 3)
}

func TestRemove(t *testing.T) {
	t.Run("top level", func(t *testing.T) {
		forest, removed := Remove(sampleForest(), 4)
		require.NotNil(t, removed)
		assert.Equal(t, 4, removed.ID)
		assert.ElementsMatch(t, []int{0, 1, 2, 3}, IDs(forest))
	})

	t.Run("nested takes subtree", func(t *testing.T) {
		forest, removed := Remove(sampleForest(), 1)
		require.NotNil(t, removed)
		assert.Len(t, removed.Subtasks, 1)
		assert.ElementsMatch(t, []int{0, 2, 4}, IDs(forest))
	})

	t.Run("missing", func(t *testing.T) {
		forest, removed := Remove(sampleForest(), 42)
		assert.Nil(t, removed)
		assert.Equal(t, 5, Count(forest))
	})

	t.Run("does not disturb original slice order", func(t *testing.T) {
		orig := sampleForest()
		first := orig[0]
		_, _ = Remove(orig, 0)
		assert.Same(t, first, orig[0])
	})
}

func TestClone_IsDeep(t *testing.T) {
	orig := sampleForest()[0]
	c := orig.Clone()

	c.Subtasks[0].Subtasks[0].Name = "changed"
	c.Subtasks = append(c.Subtasks, &Task{ID: 9})

	assert.Equal(t, "Export keys", orig.Subtasks[0].Subtasks[0].Name)
	assert.Len(t, orig.Subtasks, 2)

	g := sampleForest()[1]
	gc := g.Clone()
	*gc.Priority = 7
	assert.Equal(t, 2, *g.Priority)
}

func TestFields_ApplyTree(t *testing.T) {
	root := sampleForest()[0]
	Fields{State: strPtr(state.Done)}.ApplyTree(root, true)
	for _, n := range Flatten([]*Task{root}) {
		assert.Equal(t, state.Done, n.State, "task #%d", n.ID)
	}

	other := sampleForest()[0]
	Fields{Name: strPtr("Renamed"), ClearPriority: true}.ApplyTree(other, false)
	assert.Equal(t, "Renamed", other.Name)
	assert.Equal(t, "Sync wallet", other.Subtasks[0].Name)
}

func TestFields_IsEmpty(t *testing.T) {
	assert.True(t, Fields{}.IsEmpty())
	assert.True(t, Fields{ID: intPtr(3)}.IsEmpty())
	assert.False(t, Fields{Priority: intPtr(1)}.IsEmpty())
	assert.False(t, Fields{ClearPriority: true}.IsEmpty())
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs("3, 1,3,,2")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, ids)

	_, err = ParseIDs("1,x")
	assert.True(t, clierr.Is(err, clierr.InvalidTaskID))

	_, err = ParseIDs(" , ")
	assert.True(t, clierr.Is(err, clierr.InvalidTaskID))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "untitled", (&Task{}).DisplayName())
	assert.Equal(t, "A", (&Task{Name: "A"}).DisplayName())
}
