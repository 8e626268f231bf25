package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTaskCloneIsDeep(t *testing.T) {
	orig := &Task{
		ID:          "t1",
		Title:       "Buy milk",
		Description: strPtr("2 litres"),
		UserID:      7,
		PerformerID: strPtr("p1"),
		Performer:   &Performer{ID: "p1", FirstName: "Ivan", LastName: "Petrov", MiddleName: strPtr("I.")},
		Subtasks:    []Subtask{{ID: "s1", Title: "find shop", TaskID: "t1"}},
	}

	c := orig.Clone()
	*c.Description = "changed"
	*c.Performer.MiddleName = "changed"
	c.Subtasks[0].Title = "changed"

	assert.Equal(t, "2 litres", *orig.Description)
	assert.Equal(t, "I.", *orig.Performer.MiddleName)
	assert.Equal(t, "find shop", orig.Subtasks[0].Title)
	assert.Nil(t, (*Task)(nil).Clone())
}

func TestTaskOwnedBy(t *testing.T) {
	task := &Task{ID: "t1", UserID: 1}
	assert.True(t, task.OwnedBy(1))
	assert.False(t, task.OwnedBy(2))
	assert.False(t, (*Task)(nil).OwnedBy(1))
}

func TestTaskSubtaskLookup(t *testing.T) {
	task := &Task{ID: "t1", Subtasks: []Subtask{{ID: "a"}, {ID: "b"}}}

	st, ok := task.Subtask("b")
	require.True(t, ok)
	st.Done = true
	assert.True(t, task.Subtasks[1].Done, "lookup returns a pointer into the slice")

	_, ok = task.Subtask("c")
	assert.False(t, ok)
}

func TestSubtaskChangesEmpty(t *testing.T) {
	assert.True(t, SubtaskChanges{}.Empty())
	assert.False(t, SubtaskChanges{Created: []Subtask{{ID: "x"}}}.Empty())
}
