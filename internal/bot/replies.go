package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"leadbot/internal/leads"
)

const (
	confirmationTitle       = "✅ Lead Information Captured!"
	confirmationDescription = "Thank you for providing your information. A sales representative will contact you soon."
	confirmationColor       = 0x00ff00

	failureMessage = "❌ There was an error saving your information. Please try again."
)

func confirmationEmbed(lead leads.Lead, at time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       confirmationTitle,
		Description: confirmationDescription,
		Color:       confirmationColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👤 Name", Value: lead.Name, Inline: true},
			{Name: "📧 Email", Value: lead.Email, Inline: true},
			{Name: "📞 Phone", Value: lead.PhoneNumber, Inline: true},
			{Name: "💰 Budget", Value: lead.Budget, Inline: true},
			{Name: "🚗 Vehicle Wanted", Value: lead.VehicleWanted},
			{Name: "🆔 Lead ID", Value: lead.ID, Inline: true},
		},
		Timestamp: at.Format(time.RFC3339),
	}
}
