package bot

import (
	"fmt"
	"strconv"
	"strings"

	"casino/economy-bot/application"
	"casino/economy-bot/bot/common"
	"casino/economy-bot/bot/features/blackjack"
	"casino/economy-bot/bot/features/economy"
	"casino/economy-bot/bot/features/roulette"
	"casino/economy-bot/bot/features/shop"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string // registers commands to one guild when set
}

// Services are the application entry points the features call
type Services struct {
	Economy   *application.Economy
	Shop      *application.ShopDesk
	Crates    *application.CrateOpener
	Blackjack *application.BlackjackTable
	Roulette  *application.RouletteTable
}

type commandHandler interface {
	HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate)
}

// Bot manages the Discord session and all feature modules
type Bot struct {
	config  Config
	session *discordgo.Session
	members *MemberDirectory

	// Feature modules
	economy   *economy.Feature
	shop      *shop.Feature
	blackjack *blackjack.Feature
	roulette  *roulette.Feature

	routes   map[string]commandHandler
	commands []*discordgo.ApplicationCommand
}

// NewSession creates a Discord session that is not connected yet
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	return dg, nil
}

// New wires the features onto the session, connects and registers the slash commands
func New(config Config, session *discordgo.Session, members *MemberDirectory, services Services) (*Bot, error) {
	bot := &Bot{
		config:  config,
		session: session,
		members: members,
	}

	// Create feature modules
	bot.economy = economy.NewFeature(services.Economy, members)
	bot.shop = shop.NewFeature(services.Shop, services.Crates)
	bot.blackjack = blackjack.NewFeature(services.Blackjack, services.Economy)
	bot.roulette = roulette.NewFeature(services.Roulette, services.Economy)

	bot.routes = make(map[string]commandHandler)
	bot.addCommands(bot.economy, economy.Commands()...)
	bot.addCommands(bot.shop, shop.Commands()...)
	bot.addCommands(bot.blackjack, blackjack.Command())
	bot.addCommands(bot.roulette, roulette.Command())

	// Register handlers
	session.AddHandler(bot.handleCommands)
	session.AddHandler(bot.handleInteractions)
	session.AddHandler(bot.handleMemberUpdate)
	session.AddHandler(bot.handleMemberRemove)
	session.AddHandler(bot.handleGuildDelete)

	// Open websocket connection
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		session.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("commands", len(bot.commands)).Info("Bot connected")
	return bot, nil
}

func (b *Bot) addCommands(handler commandHandler, commands ...*discordgo.ApplicationCommand) {
	for _, cmd := range commands {
		b.routes[cmd.Name] = handler
		b.commands = append(b.commands, cmd)
	}
}

// Close disconnects from Discord
func (b *Bot) Close() error {
	return b.session.Close()
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

// handleCommands routes slash commands to the feature that registered them
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	handler, ok := b.routes[i.ApplicationCommandData().Name]
	if !ok {
		log.WithField("command", i.ApplicationCommandData().Name).Warn("Unknown command")
		return
	}
	defer b.recoverInteraction(s, i)
	handler.HandleCommand(s, i)
}

// handleInteractions routes component interactions to appropriate features
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	defer b.recoverInteraction(s, i)
	switch {
	case strings.HasPrefix(customID, "blackjack_"):
		b.blackjack.HandleInteraction(s, i)
	default:
		log.WithField("customID", customID).Debug("Unrouted component interaction")
	}
}

// recoverInteraction keeps a panicking handler from taking down the gateway loop
func (b *Bot) recoverInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"interaction": common.InteractionName(i),
			"panic":       r,
		}).Error("Interaction handler panicked")
		common.RespondWithError(s, i, "Something went wrong. Please try again later.")
	}
}

func (b *Bot) handleMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	b.dropMember(m.GuildID, m.User)
}

func (b *Bot) handleMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	b.dropMember(m.GuildID, m.User)
}

// dropMember forgets a cached member whose roles changed outside the bot
func (b *Bot) dropMember(guild string, user *discordgo.User) {
	if user == nil {
		return
	}
	guildID, err := strconv.ParseInt(guild, 10, 64)
	if err != nil {
		return
	}
	userID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return
	}
	b.members.Invalidate(guildID, userID)
}

func (b *Bot) handleGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	guildID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil {
		return
	}
	b.members.InvalidateGuild(guildID)
	log.WithField("guildID", guildID).Info("Bot left guild")
}
