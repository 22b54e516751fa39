package economy

import (
	"fmt"
	"strings"

	"casino/economy-bot/bot/common"
	"casino/economy-bot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

var incomeTitles = map[entities.IncomeKind][2]string{
	entities.IncomeKindWork:   {"💼 You worked a shift and earned **%s**.", "💼 You slacked off and were docked **%s**."},
	entities.IncomeKindCrime:  {"🦹 The heist paid off: **%s**.", "🚓 You got caught and paid a **%s** fine."},
	entities.IncomeKindHustle: {"🎲 Your hustle brought in **%s**.", "🎲 The hustle went wrong and cost you **%s**."},
}

// buildBalanceEmbed renders an account with its recent ledger entries
func buildBalanceEmbed(name string, account *entities.Account, rank int, history []*entities.LedgerEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's balance", name),
		Color: common.ColorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Cash", Value: common.FormatCoins(account.Cash), Inline: true},
			{Name: "Bank", Value: common.FormatCoins(account.Bank), Inline: true},
			{Name: "Total", Value: common.FormatCoins(account.Cash + account.Bank), Inline: true},
		},
	}
	if rank > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Leaderboard rank: #%d", rank)}
	}
	if len(history) > 0 {
		lines := make([]string, len(history))
		for i, entry := range history {
			sign := "+"
			if entry.Amount < 0 {
				sign = ""
			}
			lines[i] = fmt.Sprintf("`%s%s` %s %s", sign, common.FormatBalance(entry.Amount), entry.Kind, strings.ReplaceAll(string(entry.TransactionType), "_", " "))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent activity",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

func formatIncome(result *entities.IncomeResult) string {
	titles, ok := incomeTitles[result.Kind]
	if !ok {
		titles = incomeTitles[entities.IncomeKindWork]
	}
	if result.Success {
		return fmt.Sprintf(titles[0], common.FormatCoins(result.Amount))
	}
	if result.Amount == 0 {
		return "You came away with nothing, but at least it cost you nothing."
	}
	return fmt.Sprintf(titles[1], common.FormatCoins(result.Amount))
}

func formatCollect(result *entities.CollectResult) string {
	lines := make([]string, 0, len(result.Payouts)+1)
	lines = append(lines, "💰 You collected your role income:")
	for _, payout := range result.Payouts {
		target := "cash"
		if payout.ToBank {
			target = "bank"
		}
		lines = append(lines, fmt.Sprintf("%s: **%s** to %s", common.GetRoleMention(payout.RoleID), common.FormatCoins(payout.Amount), target))
	}
	return strings.Join(lines, "\n")
}

func formatRobbery(result *entities.RobberyResult, targetID int64) string {
	if result.Success {
		return fmt.Sprintf("🦝 You robbed %s and got away with **%s**!", common.GetUserMention(targetID), common.FormatCoins(result.Stolen))
	}
	return fmt.Sprintf("🚨 You were caught robbing %s and fined **%s**. (%.0f%% chance to fail)",
		common.GetUserMention(targetID), common.FormatCoins(result.Fine), result.FailChance*100)
}

func formatCockfight(result *entities.CockfightResult) string {
	if result.Won {
		return fmt.Sprintf("🐓 Your chicken won (rolled %d, needed %d or less)! You won **%s**. Its win chance is now %d%%.",
			result.Roll, result.Chance, common.FormatCoins(result.Payout), result.NextChance)
	}
	return fmt.Sprintf("🐓 Your chicken died (rolled %d, needed %d or less). You lost **%s**.",
		result.Roll, result.Chance, common.FormatCoins(result.Bet))
}
