package economy

import (
	"bytes"
	"context"
	"fmt"

	"casino/economy-bot/bot/common"
	"casino/economy-bot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	balanceHistoryLimit = 5
	leaderboardLimit    = 10
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

func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// targetOption returns the user option with the roles Discord resolved for it
func targetOption(i *discordgo.InteractionCreate) (*discordgo.User, []int64) {
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		if opt.Name != "user" {
			continue
		}
		user := opt.UserValue(nil)
		if data.Resolved != nil {
			if resolved, ok := data.Resolved.Users[user.ID]; ok {
				user = resolved
			}
			if member, ok := data.Resolved.Members[user.ID]; ok {
				return user, common.MemberRoleIDs(member)
			}
		}
		return user, nil
	}
	return nil, nil
}

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	if target, _ := targetOption(i); target != nil {
		if target.Bot {
			common.RespondWithError(s, i, "Bots don't have balances.")
			return
		}
		if userID, err = common.ParseUserID(target.ID); err != nil {
			common.HandleError(s, i, common.NewSystemError(err, "invalid target id"), false)
			return
		}
	}

	account, err := f.economy.Balance(ctx, guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	rank, err := f.economy.Rank(ctx, guildID, userID, entities.LeaderboardSortTotal)
	if err != nil {
		log.WithError(err).Warn("Failed to get leaderboard rank")
	}
	history, err := f.economy.History(ctx, guildID, userID, balanceHistoryLimit)
	if err != nil {
		log.WithError(err).Warn("Failed to get balance history")
	}

	name := f.names.DisplayName(ctx, guildID, userID)
	respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{buildBalanceEmbed(name, account, rank, history)},
	})
}

func (f *Feature) handleBankTransfer(s *discordgo.Session, i *discordgo.InteractionCreate, deposit bool) {
	ctx := context.Background()

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	input := stringOption(i, "amount")
	before, err := f.economy.Balance(ctx, guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var account *entities.Account
	if deposit {
		account, err = f.economy.Deposit(ctx, guildID, userID, input)
	} else {
		account, err = f.economy.Withdraw(ctx, guildID, userID, input)
	}
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var message string
	if deposit {
		message = fmt.Sprintf("🏦 Deposited **%s** to your bank. Bank: %s",
			common.FormatCoins(account.Bank-before.Bank), common.FormatCoins(account.Bank))
	} else {
		message = fmt.Sprintf("🏦 Withdrew **%s** from your bank. Cash: %s",
			common.FormatCoins(before.Bank-account.Bank), common.FormatCoins(account.Cash))
	}
	respond(s, i, &discordgo.InteractionResponseData{Content: message})
}

func (f *Feature) handlePay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, senderID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	recipient, _ := targetOption(i)
	if recipient == nil || recipient.Bot {
		common.RespondWithError(s, i, "You can only pay other members.")
		return
	}
	receiverID, err := common.ParseUserID(recipient.ID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "invalid recipient id"), false)
		return
	}

	result, err := f.economy.Pay(ctx, guildID, senderID, receiverID, stringOption(i, "amount"), common.MemberRoleIDs(i.Member))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	respond(s, i, &discordgo.InteractionResponseData{
		Content: common.FormatPaymentResult(result.Amount, result.Fee, recipient.ID),
	})
}

func (f *Feature) handleRob(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, robberID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	target, targetRoles := targetOption(i)
	if target == nil || target.Bot {
		common.HandleError(s, i, entities.ErrInvalidTarget, false)
		return
	}
	targetID, err := common.ParseUserID(target.ID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "invalid target id"), false)
		return
	}

	result, err := f.economy.Rob(ctx, guildID, robberID, targetID, targetRoles)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	respond(s, i, &discordgo.InteractionResponseData{Content: formatRobbery(result, targetID)})
}

func (f *Feature) handleEarn(s *discordgo.Session, i *discordgo.InteractionCreate, kind entities.IncomeKind) {
	ctx := context.Background()

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.economy.Earn(ctx, guildID, userID, kind)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	respond(s, i, &discordgo.InteractionResponseData{Content: formatIncome(result)})
}

func (f *Feature) handleCollect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.economy.Collect(ctx, guildID, userID, common.MemberRoleIDs(i.Member))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	respond(s, i, &discordgo.InteractionResponseData{
		Content:         formatCollect(result),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
}

func (f *Feature) handleCockfight(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.economy.Cockfight(ctx, guildID, userID, stringOption(i, "amount"))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	respond(s, i, &discordgo.InteractionResponseData{Content: formatCockfight(result)})
}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	sortBy := entities.LeaderboardSortTotal
	if raw := stringOption(i, "sort"); raw != "" {
		sortBy = entities.LeaderboardSort(raw)
	}

	// Rendering and name lookups can take longer than the interaction deadline
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Errorf("Error deferring leaderboard response: %v", err)
		return
	}

	entries, err := f.economy.Leaderboard(ctx, guildID, sortBy, leaderboardLimit)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}
	if len(entries) == 0 {
		common.FollowUpWithError(s, i, "Nobody has any coins yet.")
		return
	}

	names := make(map[int64]string, len(entries))
	for _, entry := range entries {
		names[entry.UserID] = f.names.DisplayName(ctx, guildID, entry.UserID)
	}

	img, err := f.generator.Generate(entries, names, sortBy)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to render leaderboard"), true)
		return
	}

	content := fmt.Sprintf("🏆 **Leaderboard** by %s", sortBy)
	if totals, err := f.economy.Totals(ctx, guildID); err == nil {
		content += fmt.Sprintf(" · %s across %d accounts", common.FormatCoins(totals.Cash+totals.Bank), totals.Accounts)
	}

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Files: []*discordgo.File{{
			Name:        "leaderboard.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(img),
		}},
	})
	if err != nil {
		log.Errorf("Error sending leaderboard: %v", err)
	}
}
