package telegram

// Client sends text messages to a Telegram chat. It keeps the application
// layer independent of the bot library.
type Client interface {
	SendText(chatID int64, text string) error
}
