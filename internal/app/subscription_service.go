package app

import (
	"context"
	"time"

	"signal_notification_bot/internal/domain/channel"
)

// RateLimits is the quota of a channel as shown to chat users.
type RateLimits struct {
	Limit     int
	Interval  time.Duration
	SendTimes []channel.ClockTime
}

// SubscriptionService backs the commands any chat may run against itself.
type SubscriptionService struct {
	directory *ChannelDirectory
}

func NewSubscriptionService(directory *ChannelDirectory) *SubscriptionService {
	return &SubscriptionService{directory: directory}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, id channel.ID, signal string) (bool, error) {
	return s.directory.Subscribe(ctx, id, signal)
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, id channel.ID, signal string) (bool, error) {
	return s.directory.Unsubscribe(ctx, id, signal)
}

func (s *SubscriptionService) ListSubscriptions(_ context.Context, id channel.ID) ([]string, error) {
	return s.directory.Subscriptions(id)
}

func (s *SubscriptionService) RateLimits(_ context.Context, id channel.ID) (*RateLimits, error) {
	ch, ok := s.directory.Get(id)
	if !ok {
		return nil, ErrChannelNotFound
	}
	return &RateLimits{
		Limit:     ch.RateLimit,
		Interval:  ch.RateLimitInterval,
		SendTimes: ch.SendTimes,
	}, nil
}
