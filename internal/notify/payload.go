package notify

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"leadbot/internal/leads"
)

const (
	LeadSource    = "Discord Bot"
	leadDetails   = "Lead captured via Discord Bot"
	embedColor    = 0xD4AF37
	embedFooter   = "Springers Vehicle Sourcing | Lead Source: " + LeadSource
	isoMillis     = "2006-01-02T15:04:05.000Z07:00"
	payloadHeader = "🚗 **NEW VEHICLE SOURCING LEAD**"
)

// BuildPayload renders a lead into the webhook message. sentAt stamps the
// embed; the DATE line always carries the lead's creation time.
func BuildPayload(lead leads.Lead, sentAt time.Time) *discordgo.WebhookParams {
	content := fmt.Sprintf(
		payloadHeader+"\n"+
			"NAME: %s\n"+
			"EMAIL: %s\n"+
			"PHONE: %s\n"+
			"VEHICLE: %s\n"+
			"BUDGET: %s\n"+
			"DETAILS: %s\n"+
			"LEADID: %s\n"+
			"SOURCE: %s\n"+
			"DATE: %s\n"+
			"DISCORDUSER: %s",
		lead.Name,
		lead.Email,
		lead.PhoneNumber,
		lead.VehicleWanted,
		lead.Budget,
		leadDetails,
		lead.ID,
		LeadSource,
		lead.CreatedAt.UTC().Format(isoMillis),
		lead.DiscordUsername,
	)

	return &discordgo.WebhookParams{
		Content: content,
		Embeds: []*discordgo.MessageEmbed{{
			Title: "🚗 New Vehicle Sourcing Lead",
			Color: embedColor,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "👤 Name", Value: lead.Name, Inline: true},
				{Name: "📧 Email", Value: lead.Email, Inline: true},
				{Name: "📱 Phone Number", Value: lead.PhoneNumber, Inline: true},
				{Name: "🚙 Vehicle Wanted", Value: lead.VehicleWanted},
				{Name: "💰 Budget Range", Value: lead.Budget, Inline: true},
				{Name: "📝 Additional Details", Value: leadDetails},
			},
			Timestamp: sentAt.UTC().Format(isoMillis),
			Footer: &discordgo.MessageEmbedFooter{
				Text: embedFooter,
			},
		}},
	}
}
