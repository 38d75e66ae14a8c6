package telegram

import (
	"context"
	"fmt"

	"signal_notification_bot/internal/domain/channel"
	domainTelegram "signal_notification_bot/internal/domain/telegram"
)

// SignalNotifier delivers signal notifications to Telegram chats.
type SignalNotifier struct {
	client domainTelegram.Client
}

func NewSignalNotifier(client domainTelegram.Client) *SignalNotifier {
	return &SignalNotifier{client: client}
}

// Deliver sends the notification and returns the transport error, if any.
func (n *SignalNotifier) Deliver(ctx context.Context, id channel.ID, signalName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.client.SendText(int64(id), fmt.Sprintf("Signal received: %s", signalName)); err != nil {
		return fmt.Errorf("send to chat %d: %w", int64(id), err)
	}
	return nil
}
