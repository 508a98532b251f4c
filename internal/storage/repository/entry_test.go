package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

func TestStorage_CreateAndReadEntry(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "collector", "collector@example.com")

	id, err := storage.CreateEntry(context.Background(), GetTestEntry(userID))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := storage.ReadEntry(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Events", got.Name)
	assert.Equal(t, "billing@acme.test", got.Email)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, userID, got.CollectedBy)
	assert.Equal(t, "collector", got.CollectedByName)
}

func TestStorage_CreateEntry_EmptyEmailStoredAsNull(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "collector", "collector@example.com")

	entry := GetTestEntry(userID)
	entry.Email = ""
	id, err := storage.CreateEntry(context.Background(), entry)
	require.NoError(t, err)

	got, err := storage.ReadEntry(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, got.Email)
}

func TestStorage_UpdateEntry(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "collector", "collector@example.com")
	id := factory.CreateEntry(t, "Acme Events", "billing@acme.test", models.StatusPending, 1500, userID)

	newStatus := models.StatusPaid
	count, err := storage.UpdateEntry(context.Background(), id, models.DummyEntryUpdate{
		Status: &newStatus,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := storage.ReadEntry(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)
	// Необновленные поля не изменились
	assert.Equal(t, "Acme Events", got.Name)
	assert.Equal(t, float64(1500), got.Charges)
}

func TestStorage_UpdateEntry_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	newName := "Ghost"
	count, err := storage.UpdateEntry(context.Background(), "00000000-0000-0000-0000-000000000000",
		models.DummyEntryUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_RemoveEntry(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "collector", "collector@example.com")
	id := factory.CreateEntry(t, "Acme Events", "billing@acme.test", models.StatusPending, 1500, userID)

	count, err := storage.RemoveEntry(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = storage.ReadEntry(context.Background(), id)
	require.Error(t, err)
}

func TestStorage_ListEntries_Pagination(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "collector", "collector@example.com")
	for i := 0; i < 5; i++ {
		factory.CreateEntry(t, "Client", "", models.StatusPending, 100, userID)
	}

	page, err := storage.ListEntries(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	rest, err := storage.ListEntries(context.Background(), 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestStorage_FindPendingWithEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "collector", "collector@example.com")

	factory.CreateEntry(t, "Pending With Email", "a@example.com", models.StatusPending, 100, userID)
	factory.CreateEntry(t, "Pending No Email", "", models.StatusPending, 100, userID)
	factory.CreateEntry(t, "Paid With Email", "b@example.com", models.StatusPaid, 100, userID)

	got, err := storage.FindPendingWithEmail(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pending With Email", got[0].Name)
	assert.Equal(t, "a@example.com", got[0].Email)
}
