// Package leads holds the data contracts shared by the bot, the store and the
// notification pipeline.
package leads

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPersistence marks a failed store create call.
	ErrPersistence = errors.New("lead persistence failed")
	// ErrDelivery marks a failed webhook delivery.
	ErrDelivery = errors.New("lead delivery failed")
)

// Submission is what the user typed into the lead form, verbatim, plus who
// submitted it.
type Submission struct {
	Name            string `db:"name" json:"name"`
	Email           string `db:"email" json:"email"`
	PhoneNumber     string `db:"phone_number" json:"phone_number"`
	Budget          string `db:"budget" json:"budget"`
	VehicleWanted   string `db:"vehicle_wanted" json:"vehicle_wanted"`
	DiscordUserID   string `db:"discord_user_id" json:"discord_user_id"`
	DiscordUsername string `db:"discord_username" json:"discord_username"`
}

// Lead is a persisted Submission.
type Lead struct {
	ID string `db:"id" json:"id"`
	Submission
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Store interface {
	CreateLead(ctx context.Context, sub Submission) (Lead, error)
}
