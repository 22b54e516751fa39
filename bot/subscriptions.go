package bot

import (
	"context"
	"fmt"
	"strconv"

	"casino/economy-bot/application"
	"casino/economy-bot/bot/common"
	"casino/economy-bot/domain"
	"casino/economy-bot/domain/events"

	log "github.com/sirupsen/logrus"
)

// RegisterBotSubscriptions registers the bot-level event subscriptions.
// These touch Discord state, so they only run in the process that owns the session.
func RegisterBotSubscriptions(subscriber domain.EventSubscriber, bot *Bot) error {
	if err := subscriber.Subscribe(events.EventTypeTempRoleExpired,
		func(ctx context.Context, event events.Event) error {
			return bot.handleTempRoleExpired(ctx, event)
		}); err != nil {
		return fmt.Errorf("failed to subscribe to temp role expiry events: %w", err)
	}

	log.Info("Bot event subscriptions registered successfully")
	return nil
}

// handleTempRoleExpired drops the cached member and lets them know by DM
func (b *Bot) handleTempRoleExpired(ctx context.Context, event events.Event) error {
	expired, err := application.AssertEventType[*events.TempRoleExpiredEvent](event, "*events.TempRoleExpiredEvent")
	if err != nil {
		return err
	}

	b.members.Invalidate(expired.GuildID, expired.UserID)

	guildName := strconv.FormatInt(expired.GuildID, 10)
	if guild, err := b.session.State.Guild(guildName); err == nil {
		guildName = guild.Name
	}
	roleName := "a temporary role"
	if role, err := b.session.State.Role(strconv.FormatInt(expired.GuildID, 10), strconv.FormatInt(expired.RoleID, 10)); err == nil {
		roleName = "**" + role.Name + "**"
	}

	channel, err := b.session.UserChannelCreate(common.FormatUserID(expired.UserID))
	if err != nil {
		log.WithError(err).WithField("userID", expired.UserID).Debug("Cannot open DM for role expiry")
		return nil
	}
	message := fmt.Sprintf("⏳ Your %s role in %s has expired.", roleName, guildName)
	if _, err := b.session.ChannelMessageSend(channel.ID, message); err != nil {
		// Members with DMs closed are common
		log.WithError(err).WithField("userID", expired.UserID).Debug("Failed to send role expiry DM")
	}
	return nil
}
