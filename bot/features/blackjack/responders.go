package blackjack

import (
	"context"
	"strconv"
	"sync"

	"casino/economy-bot/application"
	"casino/economy-bot/bot/common"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// interactionResponder answers the slash command or button press that triggered a step
type interactionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	update      bool // edit the message the button sits on

	mu        sync.Mutex
	responded bool
}

func newInteractionResponder(s *discordgo.Session, i *discordgo.InteractionCreate, update bool) *interactionResponder {
	return &interactionResponder{session: s, interaction: i.Interaction, update: update}
}

func (r *interactionResponder) RespondWith(ctx context.Context, outcome *entities.BlackjackOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	responseType := discordgo.InteractionResponseChannelMessageWithSource
	if r.update {
		responseType = discordgo.InteractionResponseUpdateMessage
	}
	err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: responseType,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{buildGameEmbed(outcome)},
			Components: gameComponents(outcome),
		},
	}, discordgo.WithContext(ctx))
	if err == nil {
		r.responded = true
	}
	return err
}

func (r *interactionResponder) Notify(ctx context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.responded {
		_, err := r.session.FollowupMessageCreate(r.interaction, false, &discordgo.WebhookParams{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		}, discordgo.WithContext(ctx))
		return err
	}
	err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err == nil {
		r.responded = true
	}
	return err
}

// messageResponder reports to the channel a game runs in, editing its message when known
type messageResponder struct {
	session   *discordgo.Session
	channelID string
	messageID string
	userID    int64
}

func (r *messageResponder) RespondWith(ctx context.Context, outcome *entities.BlackjackOutcome) error {
	embeds := []*discordgo.MessageEmbed{buildGameEmbed(outcome)}
	components := gameComponents(outcome)

	if r.messageID != "" {
		_, err := r.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         r.messageID,
			Channel:    r.channelID,
			Embeds:     &embeds,
			Components: &components,
		}, discordgo.WithContext(ctx))
		return err
	}
	_, err := r.session.ChannelMessageSendComplex(r.channelID, &discordgo.MessageSend{
		Embeds:     embeds,
		Components: components,
	}, discordgo.WithContext(ctx))
	return err
}

func (r *messageResponder) Notify(ctx context.Context, message string) error {
	_, err := r.session.ChannelMessageSend(r.channelID, common.GetUserMention(r.userID)+" "+message, discordgo.WithContext(ctx))
	return err
}

// ResponderFactory builds responders for games nobody is interacting with
type ResponderFactory struct {
	session *discordgo.Session
}

// NewResponderFactory creates a factory posting through the session
func NewResponderFactory(session *discordgo.Session) *ResponderFactory {
	return &ResponderFactory{session: session}
}

// ForSession returns a channel responder, or a no-op one when the game has no channel
func (f *ResponderFactory) ForSession(session *entities.BlackjackSession) interfaces.Responder {
	if session.ChannelID == 0 {
		return application.NoopResponder{}
	}
	r := &messageResponder{
		session:   f.session,
		channelID: strconv.FormatInt(session.ChannelID, 10),
		userID:    session.UserID,
	}
	if session.MessageID != nil {
		r.messageID = strconv.FormatInt(*session.MessageID, 10)
	}
	return r
}
