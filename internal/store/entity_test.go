package store_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookdenapp/bookden-server/internal/store"
)

type TestEntity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Group string `json:"group"`
}

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "entity-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func TestEntity_Create_Success(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	testData := &TestEntity{
		ID:    "1",
		Name:  "John Doe",
		Email: "john@example.com",
	}

	err := entity.Create(context.Background(), "1", testData)
	require.NoError(t, err)

	// Verify we can retrieve it
	retrieved, err := entity.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, testData.ID, retrieved.ID)
	require.Equal(t, testData.Name, retrieved.Name)
	require.Equal(t, testData.Email, retrieved.Email)
}

func TestEntity_Create_AlreadyExists(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	testData := &TestEntity{ID: "1", Name: "John Doe"}

	err := entity.Create(context.Background(), "1", testData)
	require.NoError(t, err)

	err = entity.Create(context.Background(), "1", testData)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	_, err := entity.Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_UniqueIndex_Conflict(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithUniqueIndex("email", func(e *TestEntity) string { return e.Email })

	err := entity.Create(context.Background(), "1", &TestEntity{ID: "1", Email: "john@example.com"})
	require.NoError(t, err)

	// Same email on a different ID must be rejected.
	err = entity.Create(context.Background(), "2", &TestEntity{ID: "2", Email: "john@example.com"})
	require.Error(t, err)

	var conflict *store.IndexConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "email", conflict.Index)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_UniqueIndexTransform(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithUniqueIndexTransform("email",
			func(e *TestEntity) string { return strings.ToLower(e.Email) },
			strings.ToLower,
		)

	err := entity.Create(context.Background(), "1", &TestEntity{ID: "1", Email: "john@example.com"})
	require.NoError(t, err)

	// Lookup with different casing finds the same entity.
	got, err := entity.GetByIndex(context.Background(), "email", "John@Example.COM")
	require.NoError(t, err)
	require.Equal(t, "1", got.ID)
}

func TestEntity_MultiIndex_List(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndex("group", func(e *TestEntity) string { return e.Group })

	for i := range 3 {
		id := fmt.Sprintf("a%d", i)
		err := entity.Create(context.Background(), id, &TestEntity{ID: id, Group: "alpha"})
		require.NoError(t, err)
	}
	err := entity.Create(context.Background(), "b1", &TestEntity{ID: "b1", Group: "beta"})
	require.NoError(t, err)

	var got []string
	for e, err := range entity.ListByIndex(context.Background(), "group", "alpha") {
		require.NoError(t, err)
		got = append(got, e.ID)
	}
	require.ElementsMatch(t, []string{"a0", "a1", "a2"}, got)
}

func TestEntity_Update_MovesIndexKeys(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndex("group", func(e *TestEntity) string { return e.Group })

	err := entity.Create(context.Background(), "1", &TestEntity{ID: "1", Group: "alpha"})
	require.NoError(t, err)

	err = entity.Update(context.Background(), "1", &TestEntity{ID: "1", Group: "beta"})
	require.NoError(t, err)

	var alphas []string
	for e, err := range entity.ListByIndex(context.Background(), "group", "alpha") {
		require.NoError(t, err)
		alphas = append(alphas, e.ID)
	}
	require.Empty(t, alphas)

	var betas []string
	for e, err := range entity.ListByIndex(context.Background(), "group", "beta") {
		require.NoError(t, err)
		betas = append(betas, e.ID)
	}
	require.Equal(t, []string{"1"}, betas)
}

func TestEntity_Update_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	err := entity.Update(context.Background(), "missing", &TestEntity{ID: "missing"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Delete_Idempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithUniqueIndex("email", func(e *TestEntity) string { return e.Email })

	err := entity.Create(context.Background(), "1", &TestEntity{ID: "1", Email: "john@example.com"})
	require.NoError(t, err)

	err = entity.Delete(context.Background(), "1")
	require.NoError(t, err)

	_, err = entity.Get(context.Background(), "1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Index entry is gone, so the email is reusable.
	err = entity.Create(context.Background(), "2", &TestEntity{ID: "2", Email: "john@example.com"})
	require.NoError(t, err)

	// Deleting a missing entity is not an error.
	err = entity.Delete(context.Background(), "missing")
	require.NoError(t, err)
}

func TestEntity_List_SkipsIndexKeys(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithUniqueIndex("email", func(e *TestEntity) string { return e.Email })

	for i := range 5 {
		id := fmt.Sprintf("%d", i)
		err := entity.Create(context.Background(), id, &TestEntity{ID: id, Email: id + "@example.com"})
		require.NoError(t, err)
	}

	count := 0
	for _, err := range entity.List(context.Background()) {
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 5, count)

	n, err := entity.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
}
