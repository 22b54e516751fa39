package blackjack

import (
	"fmt"
	"strconv"
	"strings"

	"casino/economy-bot/bot/common"
	"casino/economy-bot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

const (
	customIDPrefix = "blackjack_"
	hiddenCard     = "🂠"
)

// buildGameEmbed renders a game. The dealer's hole card stays hidden until the game is over.
func buildGameEmbed(outcome *entities.BlackjackOutcome) *discordgo.MessageEmbed {
	session := outcome.Session

	dealerCards := formatHand(session.DealerHand)
	if !outcome.Finished && len(session.DealerHand) > 1 {
		dealerCards = hiddenCard + " " + formatHand(session.DealerHand[1:])
	}

	playerScore := strconv.Itoa(outcome.PlayerScore)
	if outcome.PlayerSoft {
		playerScore = "soft " + playerScore
	}

	embed := &discordgo.MessageEmbed{
		Title: "🃏 Blackjack",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Your hand",
				Value:  fmt.Sprintf("%s\n**%s**", formatHand(session.PlayerHand), playerScore),
				Inline: true,
			},
			{
				Name:   "Dealer",
				Value:  fmt.Sprintf("%s\n**%d**", dealerCards, outcome.DealerScore),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Bet: %s %s", common.FormatBalance(session.Bet), common.CurrencyName),
		},
	}

	if !outcome.Finished {
		embed.Color = common.ColorPrimary
		embed.Description = fmt.Sprintf("%s, hit, stand or double down.", common.GetUserMention(session.UserID))
		return embed
	}

	embed.Description = resultLine(outcome)
	switch outcome.Result {
	case entities.BlackjackResultPlayer, entities.BlackjackResultBlackjack:
		embed.Color = common.ColorSuccess
	case entities.BlackjackResultPush:
		embed.Color = common.ColorWarning
	default:
		embed.Color = common.ColorDanger
	}
	return embed
}

func resultLine(outcome *entities.BlackjackOutcome) string {
	mention := common.GetUserMention(outcome.Session.UserID)
	var line string
	switch outcome.Result {
	case entities.BlackjackResultBlackjack:
		line = fmt.Sprintf("🎉 Blackjack! %s wins **%s**.", mention, common.FormatCoins(outcome.Payout))
	case entities.BlackjackResultPlayer:
		line = fmt.Sprintf("🎉 %s beats the dealer and wins **%s**.", mention, common.FormatCoins(outcome.Payout))
	case entities.BlackjackResultPush:
		line = fmt.Sprintf("🤝 Push. %s gets the bet back.", mention)
	default:
		if outcome.PlayerScore > 21 {
			line = fmt.Sprintf("💥 Bust! %s loses **%s**.", mention, common.FormatCoins(outcome.Session.Bet))
		} else {
			line = fmt.Sprintf("😔 The dealer wins. %s loses **%s**.", mention, common.FormatCoins(outcome.Session.Bet))
		}
	}
	if outcome.TimedOut {
		line += "\n⏱️ The game timed out and was played as a stand."
	}
	return line
}

func formatHand(hand []entities.Card) string {
	cards := make([]string, len(hand))
	for i, card := range hand {
		cards[i] = "`" + string(card) + "`"
	}
	return strings.Join(cards, " ")
}

// gameComponents returns the action buttons of a running game, none once it is over
func gameComponents(outcome *entities.BlackjackOutcome) []discordgo.MessageComponent {
	if outcome.Finished {
		return []discordgo.MessageComponent{}
	}
	userID := outcome.Session.UserID
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Hit",
					Style:    discordgo.PrimaryButton,
					CustomID: buildCustomID(entities.BlackjackActionHit, userID),
				},
				discordgo.Button{
					Label:    "Stand",
					Style:    discordgo.SecondaryButton,
					CustomID: buildCustomID(entities.BlackjackActionStand, userID),
				},
				discordgo.Button{
					Label:    "Double",
					Style:    discordgo.SuccessButton,
					CustomID: buildCustomID(entities.BlackjackActionDouble, userID),
					Disabled: len(outcome.Session.PlayerHand) != 2,
				},
			},
		},
	}
}

// buildCustomID encodes the action and the player who owns the buttons
func buildCustomID(action entities.BlackjackAction, userID int64) string {
	return fmt.Sprintf("%s%s_%d", customIDPrefix, action, userID)
}

func parseCustomID(customID string) (entities.BlackjackAction, int64, error) {
	parts := strings.Split(strings.TrimPrefix(customID, customIDPrefix), "_")
	if !strings.HasPrefix(customID, customIDPrefix) || len(parts) != 2 {
		return "", 0, fmt.Errorf("malformed blackjack button %q", customID)
	}
	action := entities.BlackjackAction(parts[0])
	if !action.IsValid() {
		return "", 0, fmt.Errorf("unknown blackjack action %q", parts[0])
	}
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed blackjack owner %q: %w", parts[1], err)
	}
	return action, userID, nil
}
