package todo

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(newTestDB(t)))
}

func TestCreateDefaults(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), CreateTodoRequest{Title: "Buy groceries"}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "Buy groceries", created.Title)
	assert.Nil(t, created.Description)
	assert.False(t, created.IsCompleted)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))
}

func TestCreateTitleBoundaries(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		title string
		valid bool
	}{
		{"empty", "", false},
		{"single char", "a", true},
		{"exactly 500", strings.Repeat("x", 500), true},
		{"501", strings.Repeat("x", 501), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, CreateTodoRequest{Title: tc.title}, "u1")
			if tc.valid {
				assert.NoError(t, err)
			} else {
				var invalid *ValidationError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, "title", invalid.Field)
			}
		})
	}
}

func TestCreateDescriptionBoundaries(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ok := strings.Repeat("d", 2000)
	_, err := svc.Create(ctx, CreateTodoRequest{Title: "t", Description: &ok}, "u1")
	assert.NoError(t, err)

	tooLong := strings.Repeat("d", 2001)
	_, err = svc.Create(ctx, CreateTodoRequest{Title: "t", Description: &tooLong}, "u1")
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "description", invalid.Field)
}

func TestListScopedToSubject(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTodoRequest{Title: "User 1 Todo 1"}, "u1")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = svc.Create(ctx, CreateTodoRequest{Title: "User 1 Todo 2"}, "u1")
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTodoRequest{Title: "User 2 Todo 1"}, "u2")
	require.NoError(t, err)

	todos, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, todos, 2)
	for _, item := range todos {
		assert.True(t, strings.HasPrefix(item.Title, "User 1"))
	}
	// Newest first.
	assert.Equal(t, "User 1 Todo 2", todos[0].Title)
}

func TestUpdatePatchSemantics(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTodoRequest{
		Title:       "original",
		Description: strPtr("original description"),
		IsCompleted: true,
	}, "u1")
	require.NoError(t, err)

	// Present-with-false must be applied; absent fields untouched.
	updated, err := svc.Update(ctx, created.ID, UpdateTodoRequest{
		IsCompleted: Optional[bool]{Set: true, Value: false},
	}, "u1")
	require.NoError(t, err)
	assert.False(t, updated.IsCompleted)
	assert.Equal(t, "original", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "original description", *updated.Description)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateValidatesPresentFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTodoRequest{Title: "keep"}, "u1")
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, UpdateTodoRequest{
		Title: Optional[string]{Set: true, Value: ""},
	}, "u1")
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)

	// Record unchanged.
	todos, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "keep", todos[0].Title)
}

func TestUpdateForeignOwnerNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTodoRequest{Title: "u1 task"}, "u1")
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, UpdateTodoRequest{
		IsCompleted: Optional[bool]{Set: true, Value: true},
	}, "u2")
	assert.ErrorIs(t, err, ErrNotFound)

	// Unchanged for the real owner.
	todos, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.False(t, todos[0].IsCompleted)
}

func TestDeleteForeignOwnerNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTodoRequest{Title: "u1 task"}, "u1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID, "u2"), ErrNotFound)

	todos, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}

func TestDeleteThenUpdateNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTodoRequest{Title: "gone soon"}, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, "u1"))

	_, err = svc.Update(ctx, created.ID, UpdateTodoRequest{
		Title: Optional[string]{Set: true, Value: "resurrect"},
	}, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMissingIDNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Update(context.Background(), uuid.NewString(), UpdateTodoRequest{}, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublicTodoNeverSerializesOwner(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), CreateTodoRequest{Title: "private"}, "u1")
	require.NoError(t, err)

	payload, err := json.Marshal(created)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "owner")
	assert.NotContains(t, string(payload), "u1")
}
