package channel

import (
	"fmt"
	"time"
)

// ID identifies a notification destination. For Telegram it is the chat ID.
type ID int64

func (id ID) String() string {
	return fmt.Sprintf("%d", int64(id))
}

// Channel holds the administrative configuration of a notification destination.
// Runtime counters live in the Gate, not here.
type Channel struct {
	ID                ID
	RateLimit         int           // Max notifications per interval, > 0
	RateLimitInterval time.Duration // > 0
	SendTimes         []ClockTime   // Sorted, unique
	Signals           []string      // Subscriptions as persisted; the registry is authoritative at runtime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Defaults are applied to channels created without explicit settings.
type Defaults struct {
	RateLimit         int
	RateLimitInterval time.Duration
	SendTimes         []ClockTime
}

// DefaultSettings mirrors the values a freshly added channel gets.
func DefaultSettings() Defaults {
	return Defaults{
		RateLimit:         5,
		RateLimitInterval: 60 * time.Second,
		SendTimes:         []ClockTime{Midnight},
	}
}

// New builds a channel with the given defaults and no subscriptions.
func New(id ID, d Defaults) *Channel {
	times := make([]ClockTime, len(d.SendTimes))
	copy(times, d.SendTimes)
	return &Channel{
		ID:                id,
		RateLimit:         d.RateLimit,
		RateLimitInterval: d.RateLimitInterval,
		SendTimes:         NormalizeClockTimes(times),
		Signals:           []string{},
	}
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (c *Channel) Clone() *Channel {
	if c == nil {
		return nil
	}
	out := *c
	out.SendTimes = append([]ClockTime(nil), c.SendTimes...)
	out.Signals = append([]string(nil), c.Signals...)
	return &out
}

// ValidateRateLimit checks the positive-integer constraints on limit and interval.
func ValidateRateLimit(limit int, interval time.Duration) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRateLimit, limit)
	}
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidRateLimit, interval)
	}
	return nil
}
