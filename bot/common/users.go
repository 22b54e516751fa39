package common

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// ParseUserID converts a Discord user ID string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// FormatUserID converts an int64 user ID to string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatUserID(userID) + ">"
}

// GetRoleMention returns a Discord mention string for a role
func GetRoleMention(roleID int64) string {
	return "<@&" + FormatUserID(roleID) + ">"
}

// InteractionUserID returns the id of whoever triggered the interaction
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// InteractionIDs parses the guild and user ids of a guild interaction
func InteractionIDs(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	if i.GuildID == "" {
		return 0, 0, NewUserError("This command only works in a server.", "interaction outside a guild")
	}
	guildID, err = strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return 0, 0, NewSystemError(err, fmt.Sprintf("invalid guild id %q", i.GuildID))
	}
	userID, err = ParseUserID(InteractionUserID(i))
	if err != nil {
		return 0, 0, NewSystemError(err, "invalid user id")
	}
	return guildID, userID, nil
}

// MemberRoleIDs returns the roles a member holds, skipping ids that do not parse
func MemberRoleIDs(member *discordgo.Member) []int64 {
	if member == nil {
		return nil
	}
	roles := make([]int64, 0, len(member.Roles))
	for _, role := range member.Roles {
		id, err := strconv.ParseInt(role, 10, 64)
		if err != nil {
			log.Warnf("Skipping unparsable role id %q", role)
			continue
		}
		roles = append(roles, id)
	}
	return roles
}

// IsUserAdmin checks if a user has administrator permissions in a guild
func IsUserAdmin(s *discordgo.Session, guildID, userID string) bool {
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		log.Errorf("Failed to get guild member: %v", err)
		return false
	}

	for _, roleID := range member.Roles {
		role, err := s.State.Role(guildID, roleID)
		if err != nil {
			continue
		}
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}

	return false
}
