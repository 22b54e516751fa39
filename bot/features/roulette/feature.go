package roulette

import (
	"casino/economy-bot/application"

	"github.com/bwmarrin/discordgo"
)

// Feature runs the /roulette command
type Feature struct {
	table   *application.RouletteTable
	economy *application.Economy
}

// NewFeature creates a new roulette feature
func NewFeature(table *application.RouletteTable, economy *application.Economy) *Feature {
	return &Feature{
		table:   table,
		economy: economy,
	}
}

// HandleCommand handles the /roulette command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleBet(s, i)
}

// Command returns the slash command definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "roulette",
		Description: "Bet on the roulette wheel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "amount",
				Description: "Amount to bet (e.g. 500, 10k, half, all)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "space",
				Description: "0-36, 1-12, 13-24, 25-36, 1st, 2nd, 3rd, 1-18, 19-36, odd, even, red or black",
				Required:    true,
			},
		},
	}
}
