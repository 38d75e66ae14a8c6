package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"signal_notification_bot/internal/domain/channel"
	"signal_notification_bot/internal/domain/subscription"
	idb "signal_notification_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type delivery struct {
	Channel channel.ID
	Signal  string
}

// fakeDeliverer records deliveries and fails for configured channels.
type fakeDeliverer struct {
	mu        sync.Mutex
	delivered []delivery
	failFor   map[channel.ID]error
	panicFor  map[channel.ID]bool
}

func newFakeDeliverer() *fakeDeliverer {
	return &fakeDeliverer{failFor: map[channel.ID]error{}, panicFor: map[channel.ID]bool{}}
}

func (f *fakeDeliverer) Deliver(_ context.Context, id channel.ID, signalName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicFor[id] {
		panic("transport exploded")
	}
	if err := f.failFor[id]; err != nil {
		return err
	}
	f.delivered = append(f.delivered, delivery{Channel: id, Signal: signalName})
	return nil
}

func (f *fakeDeliverer) sent() []delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]delivery(nil), f.delivered...)
}

var errTransport = errors.New("telegram unavailable")

type fixture struct {
	repo       *idb.MemoryChannelRepository
	registry   *subscription.Registry
	gate       *channel.Gate
	directory  *ChannelDirectory
	deliverer  *fakeDeliverer
	dispatcher *Dispatcher
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      idb.NewMemoryChannelRepository(),
		registry:  subscription.NewRegistry(),
		gate:      channel.NewGate(),
		deliverer: newFakeDeliverer(),
		now:       time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.directory = NewChannelDirectory(f.repo, f.registry, f.gate, channel.DefaultSettings(), testLogger())
	f.dispatcher = NewDispatcher(f.registry, f.directory, f.gate, f.deliverer, testLogger())
	f.dispatcher.SetClock(func() time.Time { return f.now })
	return f
}

// addChannel registers a channel and subscribes it to signals.
func (f *fixture) addChannel(t *testing.T, id channel.ID, signals ...string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.directory.Add(ctx, id)
	require.NoError(t, err)
	for _, s := range signals {
		_, err := f.directory.Subscribe(ctx, id, s)
		require.NoError(t, err)
	}
}
