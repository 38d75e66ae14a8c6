package telegram

import (
	"context"
	"io"
	"testing"

	"signal_notification_bot/internal/app"
	"signal_notification_bot/internal/domain/channel"
	"signal_notification_bot/internal/domain/subscription"
	"signal_notification_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

const testAdminID = int64(42)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeRouter records registered handlers with their middleware applied.
type fakeRouter struct {
	handlers map[string]telebot.HandlerFunc
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{handlers: make(map[string]telebot.HandlerFunc)}
}

func (r *fakeRouter) Handle(endpoint interface{}, h telebot.HandlerFunc, m ...telebot.MiddlewareFunc) {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	r.handlers[endpoint.(string)] = h
}

// fakeContext implements the handful of telebot.Context methods the handlers use.
type fakeContext struct {
	telebot.Context
	sender *telebot.User
	chat   *telebot.Chat
	args   []string
	sent   []string
}

func newFakeContext(senderID, chatID int64, args ...string) *fakeContext {
	return &fakeContext{
		sender: &telebot.User{ID: senderID, FirstName: "Ana"},
		chat:   &telebot.Chat{ID: chatID},
		args:   args,
	}
}

func (c *fakeContext) Sender() *telebot.User { return c.sender }
func (c *fakeContext) Chat() *telebot.Chat   { return c.chat }
func (c *fakeContext) Args() []string        { return c.args }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what.(string))
	return nil
}

func (c *fakeContext) last() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

type handlerFixture struct {
	router    *fakeRouter
	directory *app.ChannelDirectory
	gate      *channel.Gate
}

func newHandlerFixture(t *testing.T, cooldown *Cooldown) *handlerFixture {
	t.Helper()
	gate := channel.NewGate()
	directory := app.NewChannelDirectory(
		database.NewMemoryChannelRepository(),
		subscription.NewRegistry(),
		gate,
		channel.DefaultSettings(),
		testLogger(),
	)
	admin := app.NewAdminService(directory, gate, testAdminID)
	subs := app.NewSubscriptionService(directory)

	r := newFakeRouter()
	ctx := context.Background()
	RegisterBotCommands(ctx, r, admin, testLogger())
	RegisterSubscriptionHandlers(ctx, r, subs, cooldown, testLogger())
	RegisterAdminHandlers(ctx, r, admin, testLogger())
	return &handlerFixture{router: r, directory: directory, gate: gate}
}

func (f *handlerFixture) run(t *testing.T, command string, c *fakeContext) string {
	t.Helper()
	h, ok := f.router.handlers[command]
	require.True(t, ok, "handler %s not registered", command)
	require.NoError(t, h(c))
	return c.last()
}
