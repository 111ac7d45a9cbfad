package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

func TestMemoryRepositorySettingsUnsetReturnsNil(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	s, err := repo.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, repo.SaveSettings(ctx, entity.DefaultSettings()))
	s, err = repo.LoadSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, s.Enabled)

	require.NoError(t, repo.DeleteSettings(ctx))
	s, err = repo.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMemoryRepositoryBatches(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	missing, err := repo.GetBatch(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	batch := &entity.Batch{ID: "b-1", Name: "pagi", Status: entity.BatchStatusPending}
	require.NoError(t, repo.SaveBatch(ctx, batch))

	// Mutating the caller's copy must not leak into the store.
	batch.Status = entity.BatchStatusFailed

	stored, err := repo.GetBatch(ctx, "b-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.BatchStatusPending, stored.Status)

	batches, err := repo.ListBatches(ctx)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}

func TestMemoryRepositoryVoiceSnapshots(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	queue := []entity.VoiceNotification{{ID: "v-1", Text: "Perhatian."}}
	require.NoError(t, repo.SaveVoiceQueue(ctx, queue))

	loaded, err := repo.LoadVoiceQueue(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "v-1", loaded[0].ID)

	empty, err := repo.LoadVoiceHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
