package blackjack

import (
	"context"
	"strconv"

	"casino/economy-bot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	var input string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "bet" {
			input = opt.StringValue()
		}
	}

	bet, err := f.economy.ResolveAmount(ctx, guildID, userID, input)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	responder := newInteractionResponder(s, i, false)
	outcome, err := f.table.Start(ctx, guildID, channelID, userID, bet, responder)
	if err != nil {
		if outcome == nil {
			common.HandleError(s, i, err, false)
		}
		return
	}
	if outcome.Finished {
		return
	}

	// Remember the message so a timeout can settle the game in place
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch blackjack message")
		return
	}
	messageID, err := strconv.ParseInt(msg.ID, 10, 64)
	if err != nil {
		log.WithError(err).Warn("Invalid blackjack message id")
		return
	}
	if err := f.table.AttachMessage(ctx, guildID, userID, channelID, messageID); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
			"error":   err,
		}).Warn("Failed to attach blackjack message")
	}
}

func (f *Feature) handleAction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	action, ownerID, err := parseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "bad blackjack button"), false)
		return
	}

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	if userID != ownerID {
		common.RespondWithError(s, i, "This isn't your game. Start your own with /blackjack.")
		return
	}

	responder := newInteractionResponder(s, i, true)
	outcome, err := f.table.Act(ctx, guildID, userID, action, responder)
	if err != nil && outcome == nil {
		common.HandleError(s, i, err, false)
		return
	}
	if err != nil {
		log.WithError(err).Debug("Blackjack step committed without a response")
	}
}
