package shop

import (
	"context"
	"fmt"

	"casino/economy-bot/bot/common"
	"casino/economy-bot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Errorf("Error responding to %s command: %v", common.InteractionName(i), err)
	}
}

func (f *Feature) handleShop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var itemType *entities.ItemType
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "type" {
			t := entities.ItemType(opt.StringValue())
			itemType = &t
		}
	}

	items, err := f.desk.ListItems(ctx, guildID, itemType)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{buildShopEmbed(items)},
	})
}

func (f *Feature) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	item, err := f.desk.FindItem(ctx, guildID, i.ApplicationCommandData().Options[0].StringValue())
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.desk.Buy(ctx, guildID, userID, item.ID, common.MemberRoleIDs(i.Member))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	respond(s, i, &discordgo.InteractionResponseData{
		Content:         formatPurchase(result),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
}

func (f *Feature) handleInventory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	entries, err := f.desk.Inventory(ctx, guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{buildInventoryEmbed(i.Member.DisplayName(), entries)},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

func (f *Feature) handleOpen(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var query string
	count := 1
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "item":
			query = opt.StringValue()
		case "count":
			count = int(opt.IntValue())
		}
	}

	crate, err := f.desk.FindItem(ctx, guildID, query)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	if crate.Type != entities.ItemTypeCase {
		common.RespondWithError(s, i, fmt.Sprintf("**%s** is not a crate.", crate.Name))
		return
	}

	// Role lookups and grants can outlast the interaction deadline
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Errorf("Error deferring open response: %v", err)
		return
	}

	summary, err := f.crates.Open(ctx, guildID, userID, crate.ID, count)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
		"crateID": crate.ID,
		"opened":  summary.Opened,
	}).Debug("Crate rewards delivered")

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds:          []*discordgo.MessageEmbed{buildRewardEmbed(crate.Name, summary)},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Errorf("Error sending crate rewards: %v", err)
	}
}
