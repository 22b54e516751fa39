package economy

import (
	"context"

	"casino/economy-bot/application"
	"casino/economy-bot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// NameResolver turns member ids into display names
type NameResolver interface {
	DisplayName(ctx context.Context, guildID, userID int64) string
}

// Feature runs the balance, income, transfer and leaderboard commands
type Feature struct {
	economy   *application.Economy
	names     NameResolver
	generator *LeaderboardImageGenerator
}

// NewFeature creates a new economy feature
func NewFeature(economy *application.Economy, names NameResolver) *Feature {
	return &Feature{
		economy:   economy,
		names:     names,
		generator: NewLeaderboardImageGenerator(),
	}
}

// HandleCommand routes the economy slash commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "balance":
		f.handleBalance(s, i)
	case "deposit":
		f.handleBankTransfer(s, i, true)
	case "withdraw":
		f.handleBankTransfer(s, i, false)
	case "pay":
		f.handlePay(s, i)
	case "rob":
		f.handleRob(s, i)
	case "work":
		f.handleEarn(s, i, entities.IncomeKindWork)
	case "crime":
		f.handleEarn(s, i, entities.IncomeKindCrime)
	case "hustle":
		f.handleEarn(s, i, entities.IncomeKindHustle)
	case "collect":
		f.handleCollect(s, i)
	case "leaderboard":
		f.handleLeaderboard(s, i)
	case "cockfight":
		f.handleCockfight(s, i)
	}
}

func amountOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "amount",
		Description: description,
		Required:    true,
	}
}

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    required,
	}
}

// Commands returns the slash command definitions of the feature
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your cash and bank balance",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to check (defaults to you)", false),
			},
		},
		{
			Name:        "deposit",
			Description: "Move cash into your bank",
			Options: []*discordgo.ApplicationCommandOption{
				amountOption("Amount to deposit (e.g. 500, 10k, half, all)"),
			},
		},
		{
			Name:        "withdraw",
			Description: "Move money from your bank to cash",
			Options: []*discordgo.ApplicationCommandOption{
				amountOption("Amount to withdraw (e.g. 500, 10k, half, all)"),
			},
		},
		{
			Name:        "pay",
			Description: "Send cash to another member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to pay", true),
				amountOption("Amount to send (e.g. 500, 10k, half, all)"),
			},
		},
		{
			Name:        "rob",
			Description: "Try to steal cash from another member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to rob", true),
			},
		},
		{Name: "work", Description: "Work for some coins"},
		{Name: "crime", Description: "Commit a crime for a bigger payout, if you get away with it"},
		{Name: "hustle", Description: "Hustle for some coins"},
		{Name: "collect", Description: "Collect the income of your roles"},
		{
			Name:        "leaderboard",
			Description: "Show the richest members",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "sort",
					Description: "Balance to rank by",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Total", Value: string(entities.LeaderboardSortTotal)},
						{Name: "Cash", Value: string(entities.LeaderboardSortCash)},
						{Name: "Bank", Value: string(entities.LeaderboardSortBank)},
					},
				},
			},
		},
		{
			Name:        "cockfight",
			Description: "Bet on your chicken in a cockfight",
			Options: []*discordgo.ApplicationCommandOption{
				amountOption("Amount to bet (e.g. 500, 10k, half, all)"),
			},
		},
	}
}
