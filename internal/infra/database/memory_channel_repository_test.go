package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"signal_notification_bot/internal/domain/channel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryChannelRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChannelRepository()

	ch := channel.New(10, channel.DefaultSettings())
	require.NoError(t, repo.Create(ctx, ch))
	assert.False(t, ch.CreatedAt.IsZero())
	assert.ErrorIs(t, repo.Create(ctx, channel.New(10, channel.DefaultSettings())), ErrDuplicateChannelID)

	ch.RateLimit = 9
	ch.RateLimitInterval = 2 * time.Minute
	ch.Signals = []string{"S"}
	require.NoError(t, repo.Update(ctx, ch))

	got, err := repo.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 9, got.RateLimit)
	assert.Equal(t, 2*time.Minute, got.RateLimitInterval)
	assert.Equal(t, []string{"S"}, got.Signals)

	// Returned values are copies.
	got.Signals[0] = "mutated"
	again, _ := repo.GetByID(ctx, 10)
	assert.Equal(t, []string{"S"}, again.Signals)

	require.NoError(t, repo.Delete(ctx, 10))
	_, err = repo.GetByID(ctx, 10)
	assert.ErrorIs(t, err, ErrChannelNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 10), ErrChannelNotFound)
	assert.ErrorIs(t, repo.Update(ctx, ch), ErrChannelNotFound)
}

func TestMemoryChannelRepository_ListAllSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChannelRepository()
	for _, id := range []channel.ID{3, 1, 2} {
		require.NoError(t, repo.Create(ctx, channel.New(id, channel.DefaultSettings())))
	}
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []channel.ID{1, 2, 3}, []channel.ID{all[0].ID, all[1].ID, all[2].ID})
}

func TestMemoryChannelRepository_FailNext(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChannelRepository()
	boom := errors.New("boom")

	repo.FailNext(boom)
	assert.ErrorIs(t, repo.Create(ctx, channel.New(1, channel.DefaultSettings())), boom)
	assert.NoError(t, repo.Create(ctx, channel.New(1, channel.DefaultSettings())))
}
