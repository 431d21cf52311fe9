package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinCreatesChannel(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")

	h.send(alice, "JOIN #test")
	msgs := h.drain(alice)
	require.Equal(t, []string{"JOIN", "353", "366"}, commandsOf(msgs))

	assert.Equal(t, "alice!alice@10.0.0.1", msgs[0].Source)
	assert.Equal(t, []string{"#test"}, msgs[0].Params)
	assert.Equal(t, []string{"alice", "=", "#test", "@alice"}, msgs[1].Params)
	assert.Equal(t, []string{"alice", "#test", "End of NAMES list"}, msgs[2].Params)

	c := h.srv.findChannel("#TEST")
	require.NotNil(t, c)
	assert.Equal(t, 1, c.count)
	assert.True(t, c.members[0].Has(MemberChanop))
}

func TestJoinExistingChannel(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")
	bob := h.register(1002, "bob")
	h.send(alice, "JOIN #test", "TOPIC #test :welcome")
	h.drain(alice)

	h.send(bob, "JOIN #Test")
	msgs := h.drain(bob)
	require.Equal(t, []string{"JOIN", "332", "353", "366"}, commandsOf(msgs))
	assert.Equal(t, []string{"#test"}, msgs[0].Params)
	assert.Equal(t, []string{"bob", "#test", "welcome"}, msgs[1].Params)
	assert.Equal(t, "@alice bob", lastParam(msgs[2]))

	msgs = h.drain(alice)
	require.Len(t, msgs, 1)
	assert.Equal(t, "JOIN", msgs[0].Command)
	assert.Equal(t, "bob!bob@10.0.0.1", msgs[0].Source)

	assert.False(t, h.srv.findChannel("#test").members[1].Has(MemberChanop))

	h.send(bob, "JOIN #test")
	assert.Empty(t, h.drain(bob), "joining twice is a no-op")
	assert.Equal(t, 2, h.srv.findChannel("#test").count)
}

func TestJoinList(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")

	h.send(alice, "JOIN #a,,#b")
	msgs := h.drain(alice)
	assert.Len(t, find(msgs, "JOIN"), 2)
	assert.Len(t, find(msgs, "366"), 2)
}

func TestJoinChannelTableFull(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")

	h.send(alice, "JOIN #a,#b,#c,#d,#e")
	msgs := h.drain(alice)
	assert.Len(t, find(msgs, "JOIN"), 4)

	errs := find(msgs, "403")
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"alice", "#e", "No such channel"}, errs[0].Params)

	_, err := h.srv.createChannel("#f")
	assert.ErrorIs(t, err, ErrChannelTableFull)
}

func TestJoinBadName(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")

	h.send(alice, "JOIN nochan", "JOIN #")
	msgs := h.drain(alice)
	assert.Equal(t, []string{"403", "403"}, commandsOf(msgs))
}

func TestJoinZeroPartsAll(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")
	bob := h.register(1002, "bob")
	h.send(alice, "JOIN #a,#b")
	h.send(bob, "JOIN #a")
	h.drain(alice)
	h.drain(bob)

	h.send(alice, "JOIN 0")
	msgs := h.drain(alice)
	require.Equal(t, []string{"PART", "PART"}, commandsOf(msgs))
	assert.Equal(t, []string{"#a", "Left all channels"}, msgs[0].Params)

	msgs = h.drain(bob)
	require.Len(t, msgs, 1)
	assert.Equal(t, "PART", msgs[0].Command)

	assert.Nil(t, h.srv.findChannel("#b"))
	assert.Equal(t, 1, h.srv.findChannel("#a").count)
}

func TestEmptyChannelSlotIsReused(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")
	bob := h.register(1002, "bob")

	h.send(alice, "JOIN #a", "TOPIC #a :old", "PART #a")
	assert.Nil(t, h.srv.findChannel("#a"))

	h.send(bob, "JOIN #a")
	msgs := h.drain(bob)
	require.Equal(t, []string{"JOIN", "353", "366"}, commandsOf(msgs), "a recreated channel has no topic")
	assert.Equal(t, "@bob", lastParam(msgs[1]))
}

func TestPart(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")
	bob := h.register(1002, "bob")
	h.send(alice, "JOIN #test")
	h.drain(alice)

	h.send(bob, "PART #nope", "PART #test")
	msgs := h.drain(bob)
	require.Equal(t, []string{"403", "442"}, commandsOf(msgs))
	assert.Equal(t, []string{"bob", "#test", "You're not on that channel"}, msgs[1].Params)

	h.send(bob, "JOIN #test")
	h.drain(bob)
	h.drain(alice)

	h.send(bob, "PART #test :see you")
	msgs = h.drain(alice)
	require.Len(t, msgs, 1)
	assert.Equal(t, "bob!bob@10.0.0.1", msgs[0].Source)
	assert.Equal(t, []string{"#test", "see you"}, msgs[0].Params)
	assert.Len(t, h.drain(bob), 1, "the parting user sees its own PART")

	h.send(alice, "PART #test")
	msgs = h.drain(alice)
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"#test"}, msgs[0].Params)
	assert.Nil(t, h.srv.findChannel("#test"))
}

func TestTopic(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")
	bob := h.register(1002, "bob")
	carol := h.register(1003, "carol")
	h.send(alice, "JOIN #test")
	h.send(bob, "JOIN #test")
	h.drain(alice)
	h.drain(bob)

	h.send(bob, "TOPIC #test", "TOPIC #nope")
	msgs := h.drain(bob)
	require.Equal(t, []string{"331", "403"}, commandsOf(msgs))
	assert.Equal(t, []string{"bob", "#test", "No topic is set."}, msgs[0].Params)

	h.send(bob, "TOPIC #test :hello world")
	for _, m := range [][]string{commandsOf(h.drain(alice)), commandsOf(h.drain(bob))} {
		assert.Equal(t, []string{"TOPIC"}, m)
	}

	h.send(carol, "TOPIC #test", "TOPIC #test :mine")
	msgs = h.drain(carol)
	require.Equal(t, []string{"332", "442"}, commandsOf(msgs))
	assert.Equal(t, []string{"carol", "#test", "hello world"}, msgs[0].Params)
	assert.Equal(t, "hello world", h.srv.findChannel("#test").topic)
}

func TestTopicIsTruncated(t *testing.T) {
	cfg := testConfig()
	cfg.Limits.Topic = 5
	h := newHarness(t, cfg)
	alice := h.register(1001, "alice")

	h.send(alice, "JOIN #test", "TOPIC #test :abcdefgh")
	assert.Equal(t, "abcde", h.srv.findChannel("#test").topic)
}

func TestTopicLock(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultChannelModes = "t"
	h := newHarness(t, cfg)
	alice := h.register(1001, "alice")
	bob := h.register(1002, "bob")
	h.send(alice, "JOIN #test")
	h.send(bob, "JOIN #test")
	h.drain(alice)
	h.drain(bob)

	h.send(bob, "TOPIC #test :mine")
	msgs := h.drain(bob)
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"bob", "#test", "You're not channel operator"}, msgs[0].Params)
	assert.Empty(t, h.srv.findChannel("#test").topic)

	h.send(alice, "TOPIC #test :ops only")
	assert.Equal(t, "ops only", h.srv.findChannel("#test").topic)

	h.send(bob, "OPER name password", "TOPIC #test :server op")
	assert.Equal(t, "server op", h.srv.findChannel("#test").topic)
}

func TestTopicSecretChannel(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultChannelModes = "s"
	h := newHarness(t, cfg)
	alice := h.register(1001, "alice")
	bob := h.register(1002, "bob")
	h.send(alice, "JOIN #hidden", "TOPIC #hidden :secret")

	h.send(bob, "TOPIC #hidden")
	msgs := h.drain(bob)
	require.Len(t, msgs, 1)
	assert.Equal(t, "442", msgs[0].Command)
}

func TestNamesPagination(t *testing.T) {
	cfg := testConfig()
	cfg.Limits.Line = 41
	h := newHarness(t, cfg)
	alice := h.register(1001, "alice")
	for i, nick := range []string{"bob", "carol", "dave"} {
		addr := h.register(uint16(1002+i), nick)
		h.send(addr, "JOIN #test")
	}
	h.send(alice, "JOIN #test")
	h.drain(alice)

	// bob created the channel; give alice ops as well
	h.srv.findChannel("#test").members[0].Set(MemberChanop)

	h.send(alice, "NAMES #test")
	msgs := h.drain(alice)
	require.Equal(t, []string{"353", "353", "366"}, commandsOf(msgs))
	assert.Equal(t, "@alice @bob", lastParam(msgs[0]))
	assert.Equal(t, "carol dave", lastParam(msgs[1]))

	for _, m := range msgs[:2] {
		line, err := m.Line()
		require.NoError(t, err)
		assert.LessOrEqual(t, len(line)-2, cfg.Limits.Line)
	}
}

func TestNamesHidesInvisibleFromOutsiders(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")
	bob := h.register(1002, "bob")
	h.send(alice, "JOIN #test")

	h.send(bob, "NAMES #test")
	msgs := h.drain(bob)
	require.Equal(t, []string{"366"}, commandsOf(msgs))

	h.send(alice, "MODE alice -i")
	h.send(bob, "NAMES #test")
	msgs = h.drain(bob)
	require.Equal(t, []string{"353", "366"}, commandsOf(msgs))
	assert.Equal(t, "@alice", lastParam(msgs[0]))
}

func TestNamesWithoutChannel(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")

	h.send(alice, "NAMES", "NAMES #nope")
	msgs := h.drain(alice)
	require.Equal(t, []string{"366", "366"}, commandsOf(msgs))
	assert.Equal(t, []string{"alice", "*", "End of NAMES list"}, msgs[0].Params)
	assert.Equal(t, []string{"alice", "#nope", "End of NAMES list"}, msgs[1].Params)
}

func TestBroadcastReachesEachUserOnce(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")
	bob := h.register(1002, "bob")
	carol := h.register(1003, "carol")
	h.send(alice, "JOIN #a,#b,#c")
	h.send(bob, "JOIN #a,#b,#c")
	h.drain(alice)
	h.drain(bob)

	h.send(alice, "NICK alicia")

	msgs := h.drain(bob)
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice!alice@10.0.0.1", msgs[0].Source)
	assert.Equal(t, []string{"alicia"}, msgs[0].Params)

	assert.Len(t, h.drain(alice), 1)
	assert.Empty(t, h.drain(carol), "users sharing no channel hear nothing")
}

func TestJoinRejectsUnsendableNames(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.register(1001, "alice")

	h.send(alice, "JOIN :#a b", "JOIN #bell\a", "TOPIC :#x y", "PART :#a b")
	msgs := h.drain(alice)
	require.Equal(t, []string{"403", "403", "403", "403"}, commandsOf(msgs))
	assert.Equal(t, []string{"alice", "*", "No such channel"}, msgs[0].Params)

	for i := range h.srv.channels {
		assert.Zero(t, h.srv.channels[i].count, "no channel slot is used")
	}

	h.send(alice, "NAMES :#a b")
	msgs = h.drain(alice)
	require.Equal(t, []string{"366"}, commandsOf(msgs))
	assert.Equal(t, []string{"alice", "*", "End of NAMES list"}, msgs[0].Params)
}
