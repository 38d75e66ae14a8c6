package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"signal_notification_bot/internal/domain/channel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelDirectory_AddUsesDefaults(t *testing.T) {
	f := newFixture(t)
	ch, err := f.directory.Add(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, channel.ID(7), ch.ID)
	assert.Equal(t, 5, ch.RateLimit)
	assert.Equal(t, 60*time.Second, ch.RateLimitInterval)
	assert.Equal(t, []string{"00:00"}, channel.FormatClockTimes(ch.SendTimes))
	assert.Empty(t, ch.Signals)

	stored, err := f.repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.RateLimit)
}

func TestChannelDirectory_AddDuplicate(t *testing.T) {
	f := newFixture(t)
	f.addChannel(t, 7)
	_, err := f.directory.Add(context.Background(), 7)
	assert.ErrorIs(t, err, ErrChannelAlreadyExists)
}

func TestChannelDirectory_UnknownChannelNotMutated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.directory.Subscribe(ctx, 3, "S")
	assert.ErrorIs(t, err, ErrChannelNotFound)
	_, err = f.directory.Unsubscribe(ctx, 3, "S")
	assert.ErrorIs(t, err, ErrChannelNotFound)
	_, err = f.directory.Subscriptions(3)
	assert.ErrorIs(t, err, ErrChannelNotFound)
	_, err = f.directory.SetRateLimit(ctx, 3, 1, time.Second)
	assert.ErrorIs(t, err, ErrChannelNotFound)
	assert.ErrorIs(t, f.directory.Remove(ctx, 3), ErrChannelNotFound)

	assert.Empty(t, f.registry.ChannelsFor("S"))
	all, _ := f.repo.ListAll(ctx)
	assert.Empty(t, all)
}

func TestChannelDirectory_SubscribePersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addChannel(t, 1)

	changed, err := f.directory.Subscribe(ctx, 1, "ETH")
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = f.directory.Subscribe(ctx, 1, " ETH ")
	require.NoError(t, err)
	assert.False(t, changed)
	_, err = f.directory.Subscribe(ctx, 1, "BTC")
	require.NoError(t, err)

	stored, err := f.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH"}, stored.Signals)

	subs, err := f.directory.Subscriptions(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH"}, subs)
}

func TestChannelDirectory_SubscribeRejectsEmptySignal(t *testing.T) {
	f := newFixture(t)
	f.addChannel(t, 1)
	_, err := f.directory.Subscribe(context.Background(), 1, "  ")
	assert.ErrorIs(t, err, ErrEmptySignalName)
}

func TestChannelDirectory_StorageFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addChannel(t, 1, "A")

	boom := errors.New("db down")
	f.repo.FailNext(boom)
	_, err := f.directory.Subscribe(ctx, 1, "B")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"A"}, f.registry.List(1))
	assert.Empty(t, f.registry.ChannelsFor("B"))

	f.repo.FailNext(boom)
	_, err = f.directory.Unsubscribe(ctx, 1, "A")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"A"}, f.registry.List(1))

	f.repo.FailNext(boom)
	_, err = f.directory.SetRateLimit(ctx, 1, 10, time.Minute)
	assert.ErrorIs(t, err, boom)
	ch, _ := f.directory.Get(1)
	assert.Equal(t, 5, ch.RateLimit)
}

func TestChannelDirectory_UnsubscribeSemantics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addChannel(t, 1, "A", "B")

	changed, err := f.directory.Unsubscribe(ctx, 1, "A")
	require.NoError(t, err)
	assert.True(t, changed)

	for i := 0; i < 2; i++ {
		changed, err = f.directory.Unsubscribe(ctx, 1, "A")
		require.NoError(t, err)
		assert.False(t, changed)
	}

	stored, _ := f.repo.GetByID(ctx, 1)
	assert.Equal(t, []string{"B"}, stored.Signals)
	assert.Equal(t, []string{"B"}, f.registry.List(1))
}

func TestChannelDirectory_RemoveDropsEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addChannel(t, 1, "S")
	f.gate.Record(1, f.now)

	require.NoError(t, f.directory.Remove(ctx, 1))

	_, ok := f.directory.Get(1)
	assert.False(t, ok)
	assert.Empty(t, f.registry.ChannelsFor("S"))
	assert.Equal(t, channel.State{}, f.gate.State(1))
	_, err := f.repo.GetByID(ctx, 1)
	assert.Error(t, err)
}

func TestChannelDirectory_SetSendTimes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addChannel(t, 1)

	_, err := f.directory.SetSendTimes(ctx, 1, nil)
	assert.ErrorIs(t, err, ErrNoSendTimes)

	ch, err := f.directory.SetSendTimes(ctx, 1, []channel.ClockTime{18 * 60, 8 * 60, 18 * 60})
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "18:00"}, channel.FormatClockTimes(ch.SendTimes))
}

func TestChannelDirectory_SetRateLimitValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addChannel(t, 1)

	_, err := f.directory.SetRateLimit(ctx, 1, 0, time.Minute)
	assert.ErrorIs(t, err, channel.ErrInvalidRateLimit)
	_, err = f.directory.SetRateLimit(ctx, 1, 1, 0)
	assert.ErrorIs(t, err, channel.ErrInvalidRateLimit)

	ch, err := f.directory.SetRateLimit(ctx, 1, 2, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, ch.RateLimit)
	assert.Equal(t, 30*time.Second, ch.RateLimitInterval)
}

func TestChannelDirectory_LoadReconcilesWithStorage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addChannel(t, 1, "A")
	f.addChannel(t, 2, "B")
	f.gate.Record(1, f.now)
	f.gate.Record(2, f.now)

	// Storage changes behind the directory's back.
	require.NoError(t, f.repo.Delete(ctx, 2))
	stored, _ := f.repo.GetByID(ctx, 1)
	stored.Signals = []string{"C"}
	require.NoError(t, f.repo.Update(ctx, stored))
	other := channel.New(3, channel.DefaultSettings())
	other.Signals = []string{"A"}
	require.NoError(t, f.repo.Create(ctx, other))

	n, err := f.directory.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{"C"}, f.registry.List(1))
	assert.Empty(t, f.registry.List(2))
	assert.Equal(t, []channel.ID{3}, f.registry.ChannelsFor("A"))
	assert.Equal(t, 1, f.gate.State(1).MessageCount, "counters of surviving channels are kept")
	assert.Equal(t, channel.State{}, f.gate.State(2))

	ids := []channel.ID{}
	for _, ch := range f.directory.List() {
		ids = append(ids, ch.ID)
	}
	assert.Equal(t, []channel.ID{1, 3}, ids)
}

func TestChannelDirectory_GetReturnsCopy(t *testing.T) {
	f := newFixture(t)
	f.addChannel(t, 1, "S")

	ch, ok := f.directory.Get(1)
	require.True(t, ok)
	ch.RateLimit = 999
	ch.Signals[0] = "changed"

	again, _ := f.directory.Get(1)
	assert.Equal(t, 5, again.RateLimit)
	assert.Equal(t, []string{"S"}, again.Signals)
}
