package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"signal_notification_bot/internal/domain/channel"
	"signal_notification_bot/internal/domain/subscription"
	idb "signal_notification_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// ChannelDirectory is the in-memory view of channel configuration, backed by
// a channel.Repository. Every mutation is persisted first and applied in
// memory only when the write succeeded. Subscriptions are held in the
// registry so that signal lookups never touch storage.
type ChannelDirectory struct {
	writeMu sync.Mutex // serializes mutations, including their storage round trip

	mu       sync.RWMutex
	channels map[channel.ID]*channel.Channel

	repo     channel.Repository
	registry *subscription.Registry
	gate     *channel.Gate
	defaults channel.Defaults
	logger   *logrus.Entry
}

func NewChannelDirectory(
	repo channel.Repository,
	registry *subscription.Registry,
	gate *channel.Gate,
	defaults channel.Defaults,
	logger *logrus.Entry,
) *ChannelDirectory {
	return &ChannelDirectory{
		channels: make(map[channel.ID]*channel.Channel),
		repo:     repo,
		registry: registry,
		gate:     gate,
		defaults: defaults,
		logger:   logger.WithField("component", "channel_directory"),
	}
}

// Load replaces the in-memory state with what storage holds. Gate counters
// of channels that still exist are kept.
func (d *ChannelDirectory) Load(ctx context.Context) (int, error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	stored, err := d.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list channels: %w", err)
	}

	fresh := make(map[channel.ID]*channel.Channel, len(stored))
	for _, ch := range stored {
		fresh[ch.ID] = ch.Clone()
	}

	d.mu.Lock()
	previous := d.channels
	d.channels = fresh
	d.mu.Unlock()

	for id := range previous {
		if _, ok := fresh[id]; !ok {
			d.registry.Drop(id)
			d.gate.Forget(id)
		}
	}
	for _, id := range d.registry.Channels() {
		if _, ok := fresh[id]; !ok {
			d.registry.Drop(id)
		}
	}
	for id, ch := range fresh {
		d.registry.Replace(id, ch.Signals)
	}

	d.logger.WithField("channels_count", len(fresh)).Info("Channels loaded from storage")
	return len(fresh), nil
}

// Get returns a copy of the channel with its current subscriptions.
func (d *ChannelDirectory) Get(id channel.ID) (*channel.Channel, bool) {
	d.mu.RLock()
	ch, ok := d.channels[id]
	d.mu.RUnlock()
	if !ok {
		return nil, false
	}
	out := ch.Clone()
	out.Signals = d.registry.List(id)
	return out, true
}

// List returns copies of all channels ordered by ID.
func (d *ChannelDirectory) List() []*channel.Channel {
	d.mu.RLock()
	ids := make([]channel.ID, 0, len(d.channels))
	for id := range d.channels {
		ids = append(ids, id)
	}
	d.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*channel.Channel, 0, len(ids))
	for _, id := range ids {
		if ch, ok := d.Get(id); ok {
			out = append(out, ch)
		}
	}
	return out
}

// Add registers a new channel with the directory defaults.
func (d *ChannelDirectory) Add(ctx context.Context, id channel.ID) (*channel.Channel, error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	if _, ok := d.lookup(id); ok {
		return nil, ErrChannelAlreadyExists
	}

	ch := channel.New(id, d.defaults)
	if err := d.repo.Create(ctx, ch); err != nil {
		if errors.Is(err, idb.ErrDuplicateChannelID) {
			return nil, ErrChannelAlreadyExists
		}
		return nil, fmt.Errorf("failed to create channel in repository: %w", err)
	}

	d.store(ch)
	d.logger.WithField("channel_id", id).Info("Channel added")
	return ch.Clone(), nil
}

// Remove deletes the channel, its subscriptions and its gate counters.
func (d *ChannelDirectory) Remove(ctx context.Context, id channel.ID) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	if _, ok := d.lookup(id); !ok {
		return ErrChannelNotFound
	}
	if err := d.repo.Delete(ctx, id); err != nil && !errors.Is(err, idb.ErrChannelNotFound) {
		return fmt.Errorf("failed to delete channel from repository: %w", err)
	}

	d.mu.Lock()
	delete(d.channels, id)
	d.mu.Unlock()
	d.registry.Drop(id)
	d.gate.Forget(id)

	d.logger.WithField("channel_id", id).Info("Channel removed")
	return nil
}

// SetRateLimit updates the quota of a channel.
func (d *ChannelDirectory) SetRateLimit(ctx context.Context, id channel.ID, limit int, interval time.Duration) (*channel.Channel, error) {
	if err := channel.ValidateRateLimit(limit, interval); err != nil {
		return nil, err
	}
	return d.update(ctx, id, func(ch *channel.Channel) {
		ch.RateLimit = limit
		ch.RateLimitInterval = interval
	})
}

// SetSendTimes replaces the channel's send times.
func (d *ChannelDirectory) SetSendTimes(ctx context.Context, id channel.ID, times []channel.ClockTime) (*channel.Channel, error) {
	if len(times) == 0 {
		return nil, ErrNoSendTimes
	}
	normalized := channel.NormalizeClockTimes(append([]channel.ClockTime(nil), times...))
	return d.update(ctx, id, func(ch *channel.Channel) {
		ch.SendTimes = normalized
	})
}

// Subscribe adds a signal to the channel. It reports whether anything changed.
func (d *ChannelDirectory) Subscribe(ctx context.Context, id channel.ID, signal string) (bool, error) {
	signal = strings.TrimSpace(signal)
	if signal == "" {
		return false, ErrEmptySignalName
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	ch, ok := d.lookup(id)
	if !ok {
		return false, ErrChannelNotFound
	}
	if d.registry.Has(id, signal) {
		return false, nil
	}

	updated := ch.Clone()
	updated.Signals = append(d.registry.List(id), signal)
	sort.Strings(updated.Signals)
	if err := d.repo.Update(ctx, updated); err != nil {
		return false, fmt.Errorf("failed to persist subscription: %w", err)
	}

	d.registry.Subscribe(id, signal)
	d.store(updated)
	return true, nil
}

// Unsubscribe removes a signal from the channel. Removing an absent signal is a no-op.
func (d *ChannelDirectory) Unsubscribe(ctx context.Context, id channel.ID, signal string) (bool, error) {
	signal = strings.TrimSpace(signal)

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	ch, ok := d.lookup(id)
	if !ok {
		return false, ErrChannelNotFound
	}
	if !d.registry.Has(id, signal) {
		return false, nil
	}

	updated := ch.Clone()
	updated.Signals = updated.Signals[:0]
	for _, s := range d.registry.List(id) {
		if s != signal {
			updated.Signals = append(updated.Signals, s)
		}
	}
	if err := d.repo.Update(ctx, updated); err != nil {
		return false, fmt.Errorf("failed to persist unsubscription: %w", err)
	}

	d.registry.Unsubscribe(id, signal)
	d.store(updated)
	return true, nil
}

// Subscriptions lists the channel's signals.
func (d *ChannelDirectory) Subscriptions(id channel.ID) ([]string, error) {
	if _, ok := d.lookup(id); !ok {
		return nil, ErrChannelNotFound
	}
	return d.registry.List(id), nil
}

func (d *ChannelDirectory) update(ctx context.Context, id channel.ID, mutate func(*channel.Channel)) (*channel.Channel, error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	ch, ok := d.lookup(id)
	if !ok {
		return nil, ErrChannelNotFound
	}
	updated := ch.Clone()
	updated.Signals = d.registry.List(id)
	mutate(updated)

	if err := d.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, idb.ErrChannelNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to update channel in repository: %w", err)
	}
	d.store(updated)
	return updated.Clone(), nil
}

func (d *ChannelDirectory) lookup(id channel.ID) (*channel.Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ch, ok := d.channels[id]
	return ch, ok
}

func (d *ChannelDirectory) store(ch *channel.Channel) {
	d.mu.Lock()
	d.channels[ch.ID] = ch.Clone()
	d.mu.Unlock()
}
