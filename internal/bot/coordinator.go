package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"leadbot/internal/leads"
)

// Stage is where one lead-capture interaction ended up after an event.
type Stage int

const (
	StageIdle Stage = iota
	StageAwaitingSubmission
	StageProcessing
	StageCompleted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAwaitingSubmission:
		return "awaiting_submission"
	case StageProcessing:
		return "processing"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Coordinator drives the lead-capture lifecycle. It keeps no state between
// events: a submission is recognised by its modal custom ID alone.
type Coordinator struct {
	responder InteractionResponder
	store     leads.Store
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

func NewCoordinator(
	responder InteractionResponder,
	store leads.Store,
	notifier Notifier,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		responder: responder,
		store:     store,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleInteraction reacts to one platform event and returns the stage it
// left the interaction in. Events that are not ours leave it Idle.
func (c *Coordinator) HandleInteraction(ctx context.Context, i *discordgo.InteractionCreate) Stage {
	if i == nil || i.Interaction == nil {
		return StageIdle
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return c.handleCommand(i.Interaction)
	case discordgo.InteractionModalSubmit:
		return c.handleModalSubmit(ctx, i.Interaction)
	default:
		return StageIdle
	}
}

func (c *Coordinator) handleCommand(i *discordgo.Interaction) Stage {
	data := i.ApplicationCommandData()
	if data.Name != LeadCommandName {
		return StageIdle
	}

	err := c.responder.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: LeadModal(),
	})
	if err != nil {
		c.logger.Error("Failed to show lead form",
			zap.String("interaction_id", i.ID),
			zap.Error(err))
		return StageIdle
	}

	c.transition(i, StageAwaitingSubmission)
	return StageAwaitingSubmission
}

func (c *Coordinator) handleModalSubmit(ctx context.Context, i *discordgo.Interaction) Stage {
	data := i.ModalSubmitData()
	if data.CustomID != LeadModalID {
		return StageIdle
	}

	c.transition(i, StageProcessing)
	sub := submissionFrom(i, data)

	// Once issued, the create and the hand-off run to completion even if
	// the bot is shutting down.
	ctx = context.WithoutCancel(ctx)

	lead, err := c.store.CreateLead(ctx, sub)
	if err != nil {
		err = fmt.Errorf("%w: %w", leads.ErrPersistence, err)
		c.logger.Error("Error saving lead",
			zap.String("discord_user_id", sub.DiscordUserID),
			zap.Error(err))
		c.replyPrivate(i, &discordgo.InteractionResponseData{Content: failureMessage})
		c.transition(i, StageFailed)
		return StageFailed
	}

	c.replyPrivate(i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{confirmationEmbed(lead, c.now())},
	})

	// The reply is already out; delivery problems stay inside the notifier.
	c.notifier.Notify(ctx, lead)

	c.logger.Info("New lead captured",
		zap.String("lead_id", lead.ID),
		zap.String("discord_user_id", lead.DiscordUserID),
		zap.String("discord_username", lead.DiscordUsername))
	c.transition(i, StageCompleted)
	return StageCompleted
}

func (c *Coordinator) replyPrivate(i *discordgo.Interaction, data *discordgo.InteractionResponseData) {
	data.Flags = discordgo.MessageFlagsEphemeral

	err := c.responder.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		c.logger.Error("Failed to send reply",
			zap.String("interaction_id", i.ID),
			zap.Error(err))
	}
}

func (c *Coordinator) transition(i *discordgo.Interaction, stage Stage) {
	c.logger.Debug("Lead interaction stage",
		zap.String("interaction_id", i.ID),
		zap.Stringer("stage", stage))
}

// submissionFrom copies the typed values without touching them.
func submissionFrom(i *discordgo.Interaction, data discordgo.ModalSubmitInteractionData) leads.Submission {
	values := textInputValues(data.Components)
	sub := leads.Submission{
		Name:          values[FieldName],
		Email:         values[FieldEmail],
		PhoneNumber:   values[FieldPhoneNumber],
		Budget:        values[FieldBudget],
		VehicleWanted: values[FieldVehicleWanted],
	}

	if u := interactionUser(i); u != nil {
		sub.DiscordUserID = u.ID
		sub.DiscordUsername = u.Username
	}
	return sub
}

func textInputValues(components []discordgo.MessageComponent) map[string]string {
	values := make(map[string]string, len(LeadFormFields))
	for _, c := range components {
		switch v := c.(type) {
		case *discordgo.ActionsRow:
			for k, val := range textInputValues(v.Components) {
				values[k] = val
			}
		case discordgo.ActionsRow:
			for k, val := range textInputValues(v.Components) {
				values[k] = val
			}
		case *discordgo.TextInput:
			values[v.CustomID] = v.Value
		case discordgo.TextInput:
			values[v.CustomID] = v.Value
		}
	}
	return values
}

// interactionUser returns the member's user in a guild, the user in a DM.
func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
