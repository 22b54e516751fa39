package bot

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// registerCommands registers all slash commands with Discord. Guild registration applies immediately,
// global registration can take up to an hour to propagate.
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.config.GuildID, b.commands)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	scope := "global"
	if b.config.GuildID != "" {
		scope = "guild " + b.config.GuildID
	}
	log.WithFields(log.Fields{
		"count": len(registered),
		"scope": scope,
	}).Info("Slash commands registered")
	return nil
}
