package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	session     *discordgo.Session
	coordinator *Coordinator
	guildID     string
	logger      *zap.Logger
	inflight    sync.WaitGroup
}

// NewSession creates the Discord session for token. It does not connect.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

func New(
	session *discordgo.Session,
	coordinator *Coordinator,
	guildID string,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		session:     session,
		coordinator: coordinator,
		guildID:     guildID,
		logger:      logger,
	}
}

// Start connects to the gateway and serves interactions until ctx is done.
// It returns once the session is closed and every handler already running
// has finished.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handle(ctx, i)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	<-ctx.Done()
	b.logger.Info("Shutting down bot")

	err := b.session.Close()
	b.inflight.Wait()
	if err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

func (b *Bot) handle(ctx context.Context, i *discordgo.InteractionCreate) Stage {
	b.inflight.Add(1)
	defer b.inflight.Done()
	return b.coordinator.HandleInteraction(ctx, i)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("Bot authorized",
		zap.String("username", r.User.Username),
		zap.String("id", r.User.ID))

	RegisterCommands(s, r.User.ID, b.guildID, b.logger)
}

// RegisterCommands registers the lead command. Failures are logged only; the
// bot keeps serving whatever commands Discord already knows.
func RegisterCommands(registrar CommandRegistrar, appID, guildID string, logger *zap.Logger) {
	cmd, err := registrar.ApplicationCommandCreate(appID, guildID, LeadCommand())
	if err != nil {
		logger.Error("Error registering slash commands",
			zap.String("guild_id", guildID),
			zap.Error(err))
		return
	}

	logger.Info("Slash commands registered successfully",
		zap.String("command", cmd.Name),
		zap.String("guild_id", guildID))
}
