package roulette

import (
	"context"
	"fmt"
	"strconv"

	"casino/economy-bot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	channelID, err := strconv.ParseInt(i.ChannelID, 10, 64)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "invalid channel id"), false)
		return
	}

	var input, space string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			input = opt.StringValue()
		case "space":
			space = opt.StringValue()
		}
	}

	amount, err := f.economy.ResolveAmount(ctx, guildID, userID, input)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	placement, err := f.table.PlaceBet(ctx, guildID, channelID, userID, amount, space)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	message := fmt.Sprintf("🎰 %s bet **%s** on **%s**. The wheel spins %s.",
		common.GetUserMention(userID),
		common.FormatCoins(placement.Bet.Amount),
		placement.Bet.Space,
		common.FormatDiscordTimestamp(placement.Round.EndTime, "R"))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to roulette command: %v", err)
	}
}
