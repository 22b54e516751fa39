package blackjack

import (
	"strings"

	"casino/economy-bot/application"

	"github.com/bwmarrin/discordgo"
)

// Feature runs the /blackjack command and its buttons
type Feature struct {
	table   *application.BlackjackTable
	economy *application.Economy
}

// NewFeature creates a new blackjack feature
func NewFeature(table *application.BlackjackTable, economy *application.Economy) *Feature {
	return &Feature{
		table:   table,
		economy: economy,
	}
}

// HandleCommand handles the /blackjack command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleStart(s, i)
}

// HandleInteraction handles the game buttons
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type == discordgo.InteractionMessageComponent && strings.HasPrefix(i.MessageComponentData().CustomID, customIDPrefix) {
		f.handleAction(s, i)
	}
}

// Command returns the slash command definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "blackjack",
		Description: "Play a hand of blackjack against the dealer",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "bet",
				Description: "Amount to bet (e.g. 500, 10k, half, all)",
				Required:    true,
			},
		},
	}
}
