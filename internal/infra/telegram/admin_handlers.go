package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"signal_notification_bot/internal/app"
	"signal_notification_bot/internal/domain/channel"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers handlers for admin commands.
// Only the configured admin may run them.
func RegisterAdminHandlers(ctx context.Context, r Router, adminService *app.AdminService, baseLogger *logrus.Entry) {
	adminOnly := func(command string, h func(c telebot.Context, log *logrus.Entry) error) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			log := baseLogger.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": c.Sender().ID,
			})
			log.Info("Command received")
			if !adminService.IsAdmin(c.Sender().ID) {
				log.Warn("Unauthorized access attempt")
				return c.Send(msgNoPermission)
			}
			return h(c, log)
		}
	}

	r.Handle("/add_channel", adminOnly("/add_channel", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /add_channel <channel_id>")
		}
		id, err := parseChannelID(args[0])
		if err != nil {
			return c.Send("Error: channel ID must be a number.")
		}

		ch, err := adminService.AddChannel(ctx, c.Sender().ID, id)
		if err != nil {
			if errors.Is(err, app.ErrChannelAlreadyExists) {
				return c.Send("Channel already exists.")
			}
			return replyAdminError(c, log, err)
		}
		log.WithField("channel_id", id).Info("Channel added")
		return c.Send(fmt.Sprintf("Channel %d added (rate limit %d per %d seconds, send times %s).",
			int64(ch.ID), ch.RateLimit, int64(ch.RateLimitInterval.Seconds()),
			strings.Join(channel.FormatClockTimes(ch.SendTimes), ", ")))
	}))

	r.Handle("/remove_channel", adminOnly("/remove_channel", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /remove_channel <channel_id>")
		}
		id, err := parseChannelID(args[0])
		if err != nil {
			return c.Send("Error: channel ID must be a number.")
		}

		if err := adminService.RemoveChannel(ctx, c.Sender().ID, id); err != nil {
			return replyAdminError(c, log, err)
		}
		log.WithField("channel_id", id).Info("Channel removed")
		return c.Send(fmt.Sprintf("Channel %d removed.", int64(id)))
	}))

	r.Handle("/set_rate_limit", adminOnly("/set_rate_limit", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) != 3 {
			return c.Send("Usage: /set_rate_limit <channel_id> <limit> <interval_seconds>")
		}
		id, err := parseChannelID(args[0])
		if err != nil {
			return c.Send("Error: channel ID must be a number.")
		}
		limit, errLimit := strconv.Atoi(args[1])
		interval, errInterval := strconv.Atoi(args[2])
		if errLimit != nil || errInterval != nil {
			return c.Send("Error: limit and interval must be numbers.")
		}

		if _, err := adminService.SetRateLimit(ctx, c.Sender().ID, id, limit, interval); err != nil {
			return replyAdminError(c, log, err)
		}
		log.WithFields(logrus.Fields{"channel_id": id, "limit": limit, "interval": interval}).Info("Rate limit updated")
		return c.Send(fmt.Sprintf("Rate limit set to %d messages per %d seconds for channel %d.", limit, interval, int64(id)))
	}))

	r.Handle("/set_send_times", adminOnly("/set_send_times", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) < 2 {
			return c.Send("Usage: /set_send_times <channel_id> <HH:MM> [HH:MM...]")
		}
		id, err := parseChannelID(args[0])
		if err != nil {
			return c.Send("Error: channel ID must be a number.")
		}

		ch, err := adminService.SetSendTimes(ctx, c.Sender().ID, id, args[1:])
		if err != nil {
			return replyAdminError(c, log, err)
		}
		times := strings.Join(channel.FormatClockTimes(ch.SendTimes), ", ")
		log.WithFields(logrus.Fields{"channel_id": id, "send_times": times}).Info("Send times updated")
		return c.Send(fmt.Sprintf("Send times set for channel %d: %s.", int64(id), times))
	}))

	r.Handle("/channel_status", adminOnly("/channel_status", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /channel_status <channel_id>")
		}
		id, err := parseChannelID(args[0])
		if err != nil {
			return c.Send("Error: channel ID must be a number.")
		}

		st, err := adminService.ChannelStatus(ctx, c.Sender().ID, id)
		if err != nil {
			return replyAdminError(c, log, err)
		}
		return c.Send(formatChannelStatus(st))
	}))

	r.Handle("/list_channels", adminOnly("/list_channels", func(c telebot.Context, log *logrus.Entry) error {
		channels, err := adminService.ListChannels(ctx, c.Sender().ID)
		if err != nil {
			return replyAdminError(c, log, err)
		}
		if len(channels) == 0 {
			return c.Send("No channels configured.")
		}
		var response strings.Builder
		response.WriteString("--- Channels ---\n")
		for _, ch := range channels {
			response.WriteString(fmt.Sprintf("ID: %d, Rate: %d/%ds, Send times: %s, Signals: %s\n",
				int64(ch.ID),
				ch.RateLimit,
				int64(ch.RateLimitInterval.Seconds()),
				strings.Join(channel.FormatClockTimes(ch.SendTimes), ", "),
				orNone(ch.Signals)))
		}
		return c.Send(response.String())
	}))

	r.Handle("/reload_config", adminOnly("/reload_config", func(c telebot.Context, log *logrus.Entry) error {
		n, err := adminService.ReloadChannels(ctx, c.Sender().ID)
		if err != nil {
			return replyAdminError(c, log, err)
		}
		log.WithField("channels_count", n).Info("Configuration reloaded")
		return c.Send(fmt.Sprintf("Configuration reloaded. %d channels loaded.", n))
	}))
}

func parseChannelID(s string) (channel.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return channel.ID(v), nil
}

func formatChannelStatus(st *app.ChannelStatus) string {
	last := "never"
	if !st.State.Never() {
		last = st.State.LastMessageTime.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("Channel %d: %s\nMessages sent: %d of %d per %d seconds\nLast message: %s\nSend times: %s\nSignals: %s",
		int64(st.Channel.ID),
		st.Status,
		st.State.MessageCount,
		st.Channel.RateLimit,
		int64(st.Channel.RateLimitInterval.Seconds()),
		last,
		strings.Join(channel.FormatClockTimes(st.Channel.SendTimes), ", "),
		orNone(st.Channel.Signals))
}

func orNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func replyAdminError(c telebot.Context, log *logrus.Entry, err error) error {
	logWithError := log.WithError(err)
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized):
		logWithError.Warn("Admin not authorized (service level)")
		return c.Send(msgNoPermission)
	case errors.Is(err, app.ErrChannelNotFound):
		logWithError.Warn("Channel not found")
		return c.Send(msgChannelMissing)
	case errors.Is(err, channel.ErrInvalidRateLimit):
		return c.Send("Error: limit and interval must be positive.")
	case errors.Is(err, channel.ErrInvalidSendTime), errors.Is(err, app.ErrNoSendTimes):
		return c.Send("Error: send times must be given as HH:MM.")
	default:
		logWithError.Error("Admin command failed")
		return c.Send(msgGenericError)
	}
}
