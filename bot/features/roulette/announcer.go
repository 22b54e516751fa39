package roulette

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"casino/economy-bot/bot/common"
	"casino/economy-bot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

const maxListedWinners = 15

// Announcer posts roulette rounds to their channel
type Announcer struct {
	session *discordgo.Session
}

// NewAnnouncer creates an announcer posting through the session
func NewAnnouncer(session *discordgo.Session) *Announcer {
	return &Announcer{session: session}
}

func (a *Announcer) AnnounceRoundOpened(ctx context.Context, round *entities.RouletteRound) error {
	_, err := a.session.ChannelMessageSendEmbed(strconv.FormatInt(round.ChannelID, 10), buildOpenedEmbed(round), discordgo.WithContext(ctx))
	return err
}

func (a *Announcer) AnnounceSettlement(ctx context.Context, settlement *entities.RouletteSettlement) error {
	_, err := a.session.ChannelMessageSendEmbed(strconv.FormatInt(settlement.ChannelID, 10), buildSettlementEmbed(settlement), discordgo.WithContext(ctx))
	return err
}

func buildOpenedEmbed(round *entities.RouletteRound) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎰 Roulette",
		Description: fmt.Sprintf("A new round is open! Place your bets with `/roulette`.\nThe wheel spins %s.", common.FormatDiscordTimestamp(round.EndTime, "R")),
		Color:       common.ColorPrimary,
	}
}

func slotEmoji(color entities.SlotColor) string {
	switch color {
	case entities.SlotColorRed:
		return "🔴"
	case entities.SlotColorBlack:
		return "⚫"
	default:
		return "🟢"
	}
}

func buildSettlementEmbed(settlement *entities.RouletteSettlement) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎰 Roulette",
		Color: common.ColorGold,
	}
	landed := fmt.Sprintf("The ball landed on **%d** %s", settlement.Result, slotEmoji(settlement.Color))

	winners := make(map[int64]int64)
	for _, entry := range settlement.Entries {
		if entry.Winnings > 0 {
			winners[entry.UserID] += entry.Winnings
		}
	}
	if len(winners) == 0 {
		embed.Description = landed + "\nNobody won this round."
		return embed
	}

	userIDs := make([]int64, 0, len(winners))
	for userID := range winners {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(a, b int) bool {
		if winners[userIDs[a]] != winners[userIDs[b]] {
			return winners[userIDs[a]] > winners[userIDs[b]]
		}
		return userIDs[a] < userIDs[b]
	})

	lines := []string{landed, ""}
	for n, userID := range userIDs {
		if n == maxListedWinners {
			lines = append(lines, fmt.Sprintf("…and %d more", len(userIDs)-maxListedWinners))
			break
		}
		lines = append(lines, fmt.Sprintf("%s won **%s**", common.GetUserMention(userID), common.FormatCoins(winners[userID])))
	}
	embed.Description = strings.Join(lines, "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Total paid: %s %s", common.FormatBalance(settlement.TotalWinnings()), common.CurrencyName),
	}
	return embed
}
