// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"signal_notification_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Router is the subset of *telebot.Bot used to register handlers.
type Router interface {
	Handle(endpoint interface{}, h telebot.HandlerFunc, m ...telebot.MiddlewareFunc)
}

func RegisterBotCommands(
	_ context.Context,
	r Router,
	adminService *app.AdminService,
	baseLogger *logrus.Entry,
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	r.Handle("/start", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithFields(logrus.Fields{"command": "/start", "sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
		logCtx.Info("Processing /start command")

		if adminService.IsAdmin(c.Sender().ID) {
			return c.Send(fmt.Sprintf("Hello, admin %s! Use /help to see the available commands.", c.Sender().FirstName))
		}
		return c.Send("Hello! I forward trading signals to subscribed chats. Use /help to see the available commands.")
	})

	r.Handle("/help", func(c telebot.Context) error {
		lang := "en"
		if args := c.Args(); len(args) > 0 {
			lang = strings.ToLower(args[0])
		}
		startHelpLogger.WithFields(logrus.Fields{"command": "/help", "sender_id": c.Sender().ID, "lang": lang}).Info("Processing /help command")
		return c.Send(helpText(lang, adminService.IsAdmin(c.Sender().ID)), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
