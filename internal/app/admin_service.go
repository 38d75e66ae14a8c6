package app

import (
	"context"
	"fmt"
	"time"

	"signal_notification_bot/internal/domain/channel"
)

// ChannelStatus is the admin view of one channel's gate.
type ChannelStatus struct {
	Channel *channel.Channel
	State   channel.State
	Status  channel.Status
}

type AdminService struct {
	directory       *ChannelDirectory
	gate            *channel.Gate
	adminTelegramID int64
	now             func() time.Time
}

func NewAdminService(directory *ChannelDirectory, gate *channel.Gate, adminID int64) *AdminService {
	return &AdminService{
		directory:       directory,
		gate:            gate,
		adminTelegramID: adminID,
		now:             time.Now,
	}
}

// IsAdmin reports whether the Telegram user may run admin operations.
func (s *AdminService) IsAdmin(userID int64) bool {
	return userID == s.adminTelegramID
}

// AddChannel registers a new channel with default settings.
func (s *AdminService) AddChannel(ctx context.Context, performingAdminID int64, id channel.ID) (*channel.Channel, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	return s.directory.Add(ctx, id)
}

// RemoveChannel deletes a channel together with its subscriptions.
func (s *AdminService) RemoveChannel(ctx context.Context, performingAdminID int64, id channel.ID) error {
	if !s.IsAdmin(performingAdminID) {
		return ErrAdminNotAuthorized
	}
	return s.directory.Remove(ctx, id)
}

// SetRateLimit sets the number of notifications allowed per interval.
func (s *AdminService) SetRateLimit(ctx context.Context, performingAdminID int64, id channel.ID, limit int, intervalSeconds int) (*channel.Channel, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	return s.directory.SetRateLimit(ctx, id, limit, time.Duration(intervalSeconds)*time.Second)
}

// SetSendTimes replaces the send times of a channel. Each value must be HH:MM.
func (s *AdminService) SetSendTimes(ctx context.Context, performingAdminID int64, id channel.ID, values []string) (*channel.Channel, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	if len(values) == 0 {
		return nil, ErrNoSendTimes
	}
	times, err := channel.ParseClockTimes(values)
	if err != nil {
		return nil, err
	}
	return s.directory.SetSendTimes(ctx, id, times)
}

// ReloadChannels re-reads every channel from storage.
func (s *AdminService) ReloadChannels(ctx context.Context, performingAdminID int64) (int, error) {
	if !s.IsAdmin(performingAdminID) {
		return 0, ErrAdminNotAuthorized
	}
	n, err := s.directory.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reload channels: %w", err)
	}
	return n, nil
}

// ChannelStatus reports the gate counters of a channel.
func (s *AdminService) ChannelStatus(_ context.Context, performingAdminID int64, id channel.ID) (*ChannelStatus, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	ch, ok := s.directory.Get(id)
	if !ok {
		return nil, ErrChannelNotFound
	}
	return &ChannelStatus{
		Channel: ch,
		State:   s.gate.State(id),
		Status:  s.gate.Status(ch, s.now()),
	}, nil
}

// ListChannels returns every configured channel.
func (s *AdminService) ListChannels(_ context.Context, performingAdminID int64) ([]*channel.Channel, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	return s.directory.List(), nil
}
