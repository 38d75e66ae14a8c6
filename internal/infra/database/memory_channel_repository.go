package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"signal_notification_bot/internal/domain/channel"
)

// MemoryChannelRepository is an in-memory channel.Repository. Used when no
// DATABASE_URL is configured and in tests.
type MemoryChannelRepository struct {
	mu       sync.RWMutex
	channels map[channel.ID]*channel.Channel
	failNext error
}

func NewMemoryChannelRepository() *MemoryChannelRepository {
	return &MemoryChannelRepository{channels: make(map[channel.ID]*channel.Channel)}
}

// FailNext makes the next mutating call return err. Tests use it to simulate storage outages.
func (r *MemoryChannelRepository) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}

func (r *MemoryChannelRepository) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *MemoryChannelRepository) Create(_ context.Context, ch *channel.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	if _, exists := r.channels[ch.ID]; exists {
		return ErrDuplicateChannelID
	}
	now := time.Now()
	ch.CreatedAt = now
	ch.UpdatedAt = now
	r.channels[ch.ID] = ch.Clone()
	return nil
}

func (r *MemoryChannelRepository) GetByID(_ context.Context, id channel.ID) (*channel.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	if !ok {
		return nil, ErrChannelNotFound
	}
	return ch.Clone(), nil
}

func (r *MemoryChannelRepository) Update(_ context.Context, ch *channel.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	existing, ok := r.channels[ch.ID]
	if !ok {
		return ErrChannelNotFound
	}
	ch.CreatedAt = existing.CreatedAt
	ch.UpdatedAt = time.Now()
	r.channels[ch.ID] = ch.Clone()
	return nil
}

func (r *MemoryChannelRepository) Delete(_ context.Context, id channel.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.channels[id]; !ok {
		return ErrChannelNotFound
	}
	delete(r.channels, id)
	return nil
}

func (r *MemoryChannelRepository) ListAll(_ context.Context) ([]*channel.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*channel.Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		out = append(out, ch.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
