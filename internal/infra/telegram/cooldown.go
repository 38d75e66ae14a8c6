package telegram

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Cooldown limits how often each user may run a command.
type Cooldown struct {
	mu       sync.Mutex
	every    time.Duration
	limiters map[string]*rate.Limiter
}

// NewCooldown allows one use per user per interval for each command.
func NewCooldown(every time.Duration) *Cooldown {
	return &Cooldown{
		every:    every,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether userID may run command now.
func (c *Cooldown) Allow(command string, userID int64) bool {
	return c.AllowAt(command, userID, time.Now())
}

func (c *Cooldown) AllowAt(command string, userID int64, now time.Time) bool {
	if c.every <= 0 {
		return true
	}
	key := command + "#" + strconv.FormatInt(userID, 10)

	c.mu.Lock()
	lim, ok := c.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(c.every), 1)
		c.limiters[key] = lim
	}
	c.mu.Unlock()

	return lim.AllowN(now, 1)
}

// Middleware replies with a notice instead of running the handler while the
// sender is cooling down.
func (c *Cooldown) Middleware(command string) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(ctx telebot.Context) error {
			if ctx.Sender() != nil && !c.Allow(command, ctx.Sender().ID) {
				return ctx.Send(msgCooldown)
			}
			return next(ctx)
		}
	}
}
