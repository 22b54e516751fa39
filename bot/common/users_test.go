package common

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionIDs(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		GuildID: "123",
		Member:  &discordgo.Member{User: &discordgo.User{ID: "456"}},
	}}

	guildID, userID, err := InteractionIDs(i)

	require.NoError(t, err)
	assert.Equal(t, int64(123), guildID)
	assert.Equal(t, int64(456), userID)
}

func TestInteractionIDs_DirectMessage(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "456"},
	}}

	_, _, err := InteractionIDs(i)

	var botErr *BotError
	require.ErrorAs(t, err, &botErr)
	assert.False(t, botErr.System)
}

func TestMemberRoleIDs(t *testing.T) {
	member := &discordgo.Member{Roles: []string{"10", "oops", "30"}}

	assert.Equal(t, []int64{10, 30}, MemberRoleIDs(member))
	assert.Nil(t, MemberRoleIDs(nil))
}
