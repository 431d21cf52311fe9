package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserModeString(t *testing.T) {
	all := UserWallops | UserInvisible | UserOperator

	assert.Equal(t, "+wi", userModeString(UserWallops|UserInvisible|UserRegistered, all))
	assert.Equal(t, "+wio", userModeString(all, all))
	assert.Equal(t, "-w", userModeString(UserInvisible, UserWallops))
	assert.Equal(t, "+w-i", userModeString(UserWallops, UserWallops|UserInvisible))
	assert.Equal(t, "+", userModeString(0, 0))
	assert.Equal(t, "+", userModeString(UserConnected|UserAway, UserConnected|UserAway))
}

func TestParseChannelModes(t *testing.T) {
	flags, ok := ParseChannelModes("nt")
	assert.True(t, ok)
	assert.Equal(t, ChanNoExternal|ChanTopicLock, flags)

	flags, ok = ParseChannelModes("+smnt")
	assert.True(t, ok)
	assert.True(t, flags.Has(ChanSecret))
	assert.True(t, flags.Has(ChanModerated))

	flags, ok = ParseChannelModes("")
	assert.True(t, ok)
	assert.Zero(t, flags)

	_, ok = ParseChannelModes("nk")
	assert.False(t, ok)
}

func TestFlagSetClear(t *testing.T) {
	var f UserFlags
	f.Set(UserAway | UserWallops)
	assert.True(t, f.Has(UserAway))
	f.Clear(UserAway)
	assert.False(t, f.Has(UserAway))
	assert.True(t, f.Has(UserWallops))

	var m MemberFlags
	assert.Equal(t, byte(0), m.prefix())
	m.Set(MemberVoice)
	assert.Equal(t, byte('v'), m.prefix())
	m.Set(MemberChanop)
	assert.Equal(t, byte('@'), m.prefix())
}
