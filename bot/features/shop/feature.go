package shop

import (
	"casino/economy-bot/application"
	"casino/economy-bot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

const maxCratesPerOpen = 25

// Feature runs the shop, inventory and crate commands
type Feature struct {
	desk   *application.ShopDesk
	crates *application.CrateOpener
}

// NewFeature creates a new shop feature
func NewFeature(desk *application.ShopDesk, crates *application.CrateOpener) *Feature {
	return &Feature{desk: desk, crates: crates}
}

// HandleCommand routes the shop slash commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "shop":
		f.handleShop(s, i)
	case "buy":
		f.handleBuy(s, i)
	case "inventory":
		f.handleInventory(s, i)
	case "open":
		f.handleOpen(s, i)
	}
}

func itemOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "item",
		Description: description,
		Required:    true,
	}
}

// Commands returns the slash command definitions of the feature
func Commands() []*discordgo.ApplicationCommand {
	minCount := float64(1)
	return []*discordgo.ApplicationCommand{
		{
			Name:        "shop",
			Description: "Browse the items for sale",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "Only show one kind of item",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Roles", Value: string(entities.ItemTypeRole)},
						{Name: "Crates", Value: string(entities.ItemTypeCase)},
						{Name: "Items", Value: string(entities.ItemTypeItem)},
					},
				},
			},
		},
		{
			Name:        "buy",
			Description: "Buy an item from the shop",
			Options: []*discordgo.ApplicationCommandOption{
				itemOption("Item name or id"),
			},
		},
		{Name: "inventory", Description: "Show the items you own"},
		{
			Name:        "open",
			Description: "Open crates from your inventory",
			Options: []*discordgo.ApplicationCommandOption{
				itemOption("Crate name or id"),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many to open",
					MinValue:    &minCount,
					MaxValue:    maxCratesPerOpen,
				},
			},
		},
	}
}
