package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"signal_notification_bot/internal/app"
	"signal_notification_bot/internal/domain/channel"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterSubscriptionHandlers registers the commands a chat runs against
// itself. Each is subject to the per-user cooldown.
func RegisterSubscriptionHandlers(ctx context.Context, r Router, subs *app.SubscriptionService, cooldown *Cooldown, baseLogger *logrus.Entry) {
	handlerLogger := func(command string, c telebot.Context) *logrus.Entry {
		return baseLogger.WithFields(logrus.Fields{
			"handler":   command,
			"sender_id": c.Sender().ID,
			"chat_id":   c.Chat().ID,
		})
	}

	r.Handle("/subscribe", func(c telebot.Context) error {
		log := handlerLogger("/subscribe", c)
		signalName, ok := singleArg(c)
		if !ok {
			return c.Send("Usage: /subscribe <signal>")
		}
		id := channel.ID(c.Chat().ID)

		changed, err := subs.Subscribe(ctx, id, signalName)
		if err != nil {
			return replyChannelError(c, log.WithField("signal", signalName), id, err)
		}
		log.WithFields(logrus.Fields{"signal": signalName, "changed": changed}).Info("Subscribe processed")
		return c.Send(fmt.Sprintf("Subscribed to signal: %s", signalName))
	}, cooldown.Middleware("/subscribe"))

	r.Handle("/unsubscribe", func(c telebot.Context) error {
		log := handlerLogger("/unsubscribe", c)
		signalName, ok := singleArg(c)
		if !ok {
			return c.Send("Usage: /unsubscribe <signal>")
		}
		id := channel.ID(c.Chat().ID)

		changed, err := subs.Unsubscribe(ctx, id, signalName)
		if err != nil {
			return replyChannelError(c, log.WithField("signal", signalName), id, err)
		}
		log.WithFields(logrus.Fields{"signal": signalName, "changed": changed}).Info("Unsubscribe processed")
		return c.Send(fmt.Sprintf("Unsubscribed from signal: %s", signalName))
	}, cooldown.Middleware("/unsubscribe"))

	r.Handle("/list_subscriptions", func(c telebot.Context) error {
		log := handlerLogger("/list_subscriptions", c)
		id := channel.ID(c.Chat().ID)

		signals, err := subs.ListSubscriptions(ctx, id)
		if err != nil {
			return replyChannelError(c, log, id, err)
		}
		if len(signals) == 0 {
			return c.Send(msgNoSubs)
		}
		return c.Send(fmt.Sprintf("Subscriptions: %s", strings.Join(signals, ", ")))
	}, cooldown.Middleware("/list_subscriptions"))

	r.Handle("/rate_limits", func(c telebot.Context) error {
		log := handlerLogger("/rate_limits", c)
		id := channel.ID(c.Chat().ID)

		limits, err := subs.RateLimits(ctx, id)
		if err != nil {
			return replyChannelError(c, log, id, err)
		}
		return c.Send(formatRateLimits(limits))
	}, cooldown.Middleware("/rate_limits"))
}

func formatRateLimits(l *app.RateLimits) string {
	return fmt.Sprintf("Rate Limit: %d, Interval: %d seconds\nSend times: %s",
		l.Limit,
		int64(l.Interval.Seconds()),
		strings.Join(channel.FormatClockTimes(l.SendTimes), ", "))
}

func singleArg(c telebot.Context) (string, bool) {
	args := c.Args()
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", false
	}
	return strings.TrimSpace(args[0]), true
}

func replyChannelError(c telebot.Context, log *logrus.Entry, id channel.ID, err error) error {
	switch {
	case errors.Is(err, app.ErrChannelNotFound):
		log.WithError(err).Info("Command from unregistered chat")
		return c.Send(fmt.Sprintf(msgNotRegistered, int64(id)))
	case errors.Is(err, app.ErrEmptySignalName):
		return c.Send("Signal name must not be empty.")
	default:
		log.WithError(err).Error("Command failed")
		return c.Send(msgGenericError)
	}
}
