package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"leadbot/internal/leads"
)

// InteractionResponder answers an interaction. *discordgo.Session satisfies it.
type InteractionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// CommandRegistrar registers application commands.
type CommandRegistrar interface {
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
}

// Notifier hands a persisted lead to the notification pipeline. It must not
// block on delivery.
type Notifier interface {
	Notify(ctx context.Context, lead leads.Lead)
}

var (
	_ InteractionResponder = (*discordgo.Session)(nil)
	_ CommandRegistrar     = (*discordgo.Session)(nil)
)
