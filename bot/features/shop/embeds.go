package shop

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"casino/economy-bot/bot/common"
	"casino/economy-bot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

var itemTypeEmoji = map[entities.ItemType]string{
	entities.ItemTypeRole: "🎖️",
	entities.ItemTypeCase: "📦",
	entities.ItemTypeItem: "🎒",
}

func buildShopEmbed(items []*entities.ShopItem) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🛒 Shop",
		Color: common.ColorPrimary,
	}
	if len(items) == 0 {
		embed.Description = "The shop is empty."
		return embed
	}

	for n, item := range items {
		if n == common.MaxEmbedFields {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("…and %d more", len(items)-n)}
			break
		}
		value := common.FormatCoins(item.Price)
		if item.Description != "" {
			value = item.Description + "\n" + value
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s %s (#%d)", itemTypeEmoji[item.Type], item.Name, item.ID),
			Value:  value,
			Inline: true,
		})
	}
	return embed
}

func buildInventoryEmbed(name string, entries []*entities.InventoryEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's inventory", name),
		Color: common.ColorPrimary,
	}
	if len(entries) == 0 {
		embed.Description = "Nothing here yet. Check out /shop."
		return embed
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Item == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s **%s** × %d", itemTypeEmoji[entry.Item.Type], entry.Item.Name, entry.Quantity))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

func formatPurchase(result *entities.PurchaseResult) string {
	message := fmt.Sprintf("🛍️ You bought **%s** for **%s**.", result.Item.Name, common.FormatCoins(result.Price))
	if result.RoleToGrant != nil {
		message += fmt.Sprintf(" You now have %s.", common.GetRoleMention(*result.RoleToGrant))
	}
	return message
}

func sortedKeys[K int64 | string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	return keys
}

// buildRewardEmbed summarises everything a batch of crates granted
func buildRewardEmbed(crateName string, summary *entities.RewardSummary) *discordgo.MessageEmbed {
	var lines []string
	if summary.CashGranted > 0 {
		lines = append(lines, fmt.Sprintf("💵 %s cash", common.FormatCoins(summary.CashGranted)))
	}
	if summary.BankGranted > 0 {
		lines = append(lines, fmt.Sprintf("🏦 %s to bank", common.FormatCoins(summary.BankGranted)))
	}
	for _, roleID := range sortedKeys(summary.RolesGranted) {
		if _, temporary := summary.RolesExtended[roleID]; temporary {
			continue
		}
		lines = append(lines, fmt.Sprintf("🎖️ %s", common.GetRoleMention(roleID)))
	}
	for _, roleID := range sortedKeys(summary.RolesExtended) {
		ext := summary.RolesExtended[roleID]
		verb := "extended"
		if ext.Granted {
			verb = "granted"
		}
		lines = append(lines, fmt.Sprintf("⏳ %s %s by %s, until %s",
			common.GetRoleMention(roleID), verb,
			common.FormatDuration(time.Duration(ext.SecondsAdded)*time.Second),
			common.FormatDiscordTimestamp(ext.ExpiresAt, "f")))
	}
	for _, roleID := range sortedKeys(summary.CompensationByRole) {
		lines = append(lines, fmt.Sprintf("🔁 %s already owned: %s to bank",
			common.GetRoleMention(roleID), common.FormatCoins(summary.CompensationByRole[roleID])))
	}
	for _, name := range sortedKeys(summary.ItemsGranted) {
		lines = append(lines, fmt.Sprintf("🎒 %s × %d", name, summary.ItemsGranted[name]))
	}
	for _, ref := range sortedKeys(summary.CratesGranted) {
		lines = append(lines, fmt.Sprintf("📦 %s × %d", ref, summary.CratesGranted[ref]))
	}
	if len(lines) == 0 {
		lines = append(lines, "Nothing this time.")
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📦 Opened %d × %s", summary.Opened, crateName),
		Description: strings.Join(lines, "\n"),
		Color:       common.ColorGold,
	}
	if summary.CompensationTotal > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Compensation paid to bank: %s coins", common.FormatBalance(summary.CompensationTotal)),
		}
	}
	return embed
}
