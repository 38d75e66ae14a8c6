// internal/infra/telegram/client.go
package telegram

import (
	"gopkg.in/telebot.v3"
)

// Sender is the part of *telebot.Bot the adapter needs.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelebotAdapter implements the domain telegram.Client using gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot Sender
}

func NewTelebotAdapter(b Sender) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendText sends a plain text message to a chat (user, group or channel).
func (tba *TelebotAdapter) SendText(chatID int64, text string) error {
	_, err := tba.bot.Send(telebot.ChatID(chatID), text, &telebot.SendOptions{DisableWebPagePreview: true})
	return err
}
