package telegram

const (
	msgCooldown       = "Please wait before using this command again."
	msgNoPermission   = "You do not have permission to use this command."
	msgGenericError   = "An error occurred while processing the command."
	msgNotRegistered  = "This chat is not a registered channel. Ask an admin to run /add_channel %d."
	msgNoSubs         = "No subscriptions found."
	msgChannelMissing = "Channel does not exist."
)

var helpMessages = map[string]string{
	"en": "*Bot Commands:*\n" +
		"`/subscribe <signal>` - Subscribe to a signal\n" +
		"`/unsubscribe <signal>` - Unsubscribe from a signal\n" +
		"`/list_subscriptions` - List all subscriptions\n" +
		"`/rate_limits` - View rate limits\n" +
		"`/help [lang]` - Show this help message",
	"es": "*Comandos del Bot:*\n" +
		"`/subscribe <señal>` - Suscribirse a una señal\n" +
		"`/unsubscribe <señal>` - Cancelar suscripción a una señal\n" +
		"`/list_subscriptions` - Listar todas las suscripciones\n" +
		"`/rate_limits` - Ver límites de tasa\n" +
		"`/help [lang]` - Mostrar este mensaje de ayuda",
}

const adminHelp = "\n\n*Admin:*\n" +
	"`/add_channel <id>`\n" +
	"`/remove_channel <id>`\n" +
	"`/set_rate_limit <id> <limit> <interval_seconds>`\n" +
	"`/set_send_times <id> <HH:MM> [HH:MM...]`\n" +
	"`/channel_status <id>`\n" +
	"`/list_channels`\n" +
	"`/reload_config`"

// helpText returns the help for lang, falling back to English.
func helpText(lang string, admin bool) string {
	text, ok := helpMessages[lang]
	if !ok {
		text = helpMessages["en"]
	}
	if admin {
		text += adminHelp
	}
	return text
}
