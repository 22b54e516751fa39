package common

import (
	"errors"
	"fmt"

	"casino/economy-bot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string      // Message shown to Discord user
	LogMessage  string      // Internal message for logging
	Ephemeral   bool        // Whether the error message should be ephemeral
	System      bool        // Whether the error is a failure on our side
	Err         error       // Underlying error
	Context     interface{} // Additional context for logging
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: "Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Ephemeral:   true,
		System:      true,
		Err:         err,
	}
}

// FromDomainError translates an error returned by the economy into a BotError.
// Anything not recognised is a system error.
func FromDomainError(err error) *BotError {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}

	userError := func(message string) *BotError {
		e := NewUserError(message, "rejected request")
		e.Err = err
		return e
	}

	var funds *entities.InsufficientFundsError
	var cooldown *entities.CooldownError
	var misconfigured *entities.MisconfiguredRewardError
	switch {
	case errors.As(err, &funds):
		return userError(fmt.Sprintf("You need %s but only have %s.", FormatCoins(funds.Required), FormatCoins(funds.Available)))
	case errors.Is(err, entities.ErrInsufficientFunds):
		return userError("You don't have enough coins for that.")
	case errors.As(err, &cooldown):
		return userError(fmt.Sprintf("Slow down! Try again in %s.", FormatDuration(cooldown.Remaining)))
	case errors.As(err, &misconfigured):
		e := NewSystemError(err, "misconfigured crate")
		e.UserMessage = "This crate is misconfigured. Please tell a server admin."
		return e
	case errors.Is(err, entities.ErrInsufficientItems):
		return userError("You don't have enough of that item.")
	case errors.Is(err, entities.ErrInvalidAmount):
		return userError("That amount is not valid.")
	case errors.Is(err, entities.ErrActiveSession):
		return userError("You already have a game in progress.")
	case errors.Is(err, entities.ErrNoActiveSession):
		return userError("You don't have a game in progress.")
	case errors.Is(err, entities.ErrRoundClosed):
		return userError("Betting for this round has closed. Your bet was refunded.")
	case errors.Is(err, entities.ErrInvalidTarget):
		return userError("You can't target that member.")
	case errors.Is(err, entities.ErrForbidden):
		return userError("You are not allowed to do that.")
	case errors.Is(err, entities.ErrAlreadyOwned):
		return userError("You already own that.")
	case errors.Is(err, entities.ErrInvalidAction):
		return userError("That move is not allowed right now.")
	case errors.Is(err, entities.ErrNotFound):
		return userError("Nothing matched that request.")
	case errors.Is(err, entities.ErrConcurrencyConflict):
		e := NewSystemError(err, "conflict retries exhausted")
		e.UserMessage = "The economy is busy. Please try again."
		return e
	}
	return NewSystemError(err, "unexpected error")
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs an error and answers the interaction with its user message
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	botErr := FromDomainError(err)

	fields := log.Fields{
		"user_id":      InteractionUserID(i),
		"command":      InteractionName(i),
		"error":        botErr.Error(),
		"user_message": botErr.UserMessage,
		"context":      botErr.Context,
	}
	if botErr.System {
		log.WithFields(fields).Error(botErr.LogMessage)
	} else {
		log.WithFields(fields).Debug(botErr.LogMessage)
	}

	if deferred {
		FollowUpWithError(s, i, botErr.UserMessage)
	} else {
		RespondWithError(s, i, botErr.UserMessage)
	}
}

// InteractionName returns the command name or component id of an interaction
func InteractionName(i *discordgo.InteractionCreate) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return i.ModalSubmitData().CustomID
	}
	return ""
}
