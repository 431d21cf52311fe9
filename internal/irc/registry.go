package irc

import (
	"errors"
	"net/netip"
	"strings"
)

var (
	ErrServerFull       = errors.New("irc: server is full")
	ErrChannelTableFull = errors.New("irc: channel table is full")
	ErrBadChannelName   = errors.New("irc: bad channel name")
)

// allocUser returns the first unoccupied user slot, or nil
func (s *Server) allocUser() *User {
	for i := range s.users {
		if !s.users[i].connected() {
			return &s.users[i]
		}
	}
	return nil
}

func (s *Server) userByAddr(addr netip.AddrPort) *User {
	for i := range s.users {
		u := &s.users[i]
		if u.connected() && u.addr == addr {
			return u
		}
	}
	return nil
}

// findUser looks a nickname up among connected users, case-insensitively
// and bounded to the nickname limit
func (s *Server) findUser(nick string) *User {
	if nick == "" {
		return nil
	}
	nick = truncate(nick, s.cfg.Limits.Nick)
	for i := range s.users {
		u := &s.users[i]
		if u.connected() && strings.EqualFold(u.nick, nick) {
			return u
		}
	}
	return nil
}

// channelKey strips the channel marker and bounds the name. Names with
// a space, comma, BEL or NUL are refused.
func (s *Server) channelKey(name string) (string, bool) {
	if len(name) < 2 || name[0] != '#' || strings.ContainsAny(name, " ,\a\x00") {
		return "", false
	}
	return truncate(name[1:], s.cfg.Limits.Channel), true
}

// findChannel looks a "#name" up among live channels
func (s *Server) findChannel(name string) *Channel {
	key, ok := s.channelKey(name)
	if !ok {
		return nil
	}
	for i := range s.channels {
		c := &s.channels[i]
		if c.count > 0 && strings.EqualFold(c.name, key) {
			return c
		}
	}
	return nil
}

// createChannel takes the first free channel slot for "#name"
func (s *Server) createChannel(name string) (*Channel, error) {
	key, ok := s.channelKey(name)
	if !ok {
		return nil, ErrBadChannelName
	}

	for i := range s.channels {
		c := &s.channels[i]
		if c.count > 0 {
			continue
		}
		members := c.members
		for j := range members {
			members[j] = 0
		}
		*c = Channel{
			name:    key,
			members: members,
			flags:   s.chanModes,
		}
		return c, nil
	}
	return nil, ErrChannelTableFull
}

// sharesChannel reports whether a and b are both joined to a live channel
func (s *Server) sharesChannel(a, b *User) bool {
	for i := range s.channels {
		c := &s.channels[i]
		if c.count > 0 && c.joined(a) && c.joined(b) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
