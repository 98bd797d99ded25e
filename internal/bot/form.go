package bot

import "github.com/bwmarrin/discordgo"

const (
	LeadCommandName        = "lead"
	LeadCommandDescription = "Start the lead capture process for vehicle sales."
	LeadModalID            = "lead_capture_modal"
	LeadModalTitle         = "Vehicle Sales Lead Information"
)

// Field keys of the lead form.
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldPhoneNumber   = "phone_number"
	FieldBudget        = "budget"
	FieldVehicleWanted = "vehicle_wanted"
)

type FieldSpec struct {
	Key         string
	Label       string
	Multiline   bool
	Required    bool
	MaxLength   int
	Placeholder string
}

// LeadFormFields is the form in display order.
var LeadFormFields = []FieldSpec{
	{Key: FieldName, Label: "Full Name", Required: true, MaxLength: 100, Placeholder: "Enter your full name"},
	{Key: FieldEmail, Label: "Email Address", Required: true, MaxLength: 100, Placeholder: "Enter your email address"},
	{Key: FieldPhoneNumber, Label: "Phone Number", Required: true, MaxLength: 20, Placeholder: "Enter your phone number"},
	{Key: FieldBudget, Label: "Budget Range", Required: true, MaxLength: 50, Placeholder: "e.g., $20,000 - $30,000"},
	{Key: FieldVehicleWanted, Label: "Vehicle Wanted", Multiline: true, Required: true, MaxLength: 500, Placeholder: "Describe the type of vehicle you are looking for"},
}

func LeadCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        LeadCommandName,
		Description: LeadCommandDescription,
	}
}

// LeadModal builds the modal response, one text input per row.
func LeadModal() *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(LeadFormFields))
	for _, f := range LeadFormFields {
		style := discordgo.TextInputShort
		if f.Multiline {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    f.Key,
					Label:       f.Label,
					Style:       style,
					Placeholder: f.Placeholder,
					Required:    f.Required,
					MaxLength:   f.MaxLength,
				},
			},
		})
	}

	return &discordgo.InteractionResponseData{
		CustomID:   LeadModalID,
		Title:      LeadModalTitle,
		Components: rows,
	}
}
