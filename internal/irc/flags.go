package irc

import "strings"

// UserFlags is the per-user flag set
type UserFlags uint16

const (
	UserConnected UserFlags = 1 << iota
	UserRegistered
	UserAway
	UserWallops
	UserInvisible
	UserOperator
)

// Has reports whether any of the bits in x are set
func (f UserFlags) Has(x UserFlags) bool { return f&x != 0 }

// Set sets the bits in x
func (f *UserFlags) Set(x UserFlags) { *f |= x }

// Clear clears the bits in x
func (f *UserFlags) Clear(x UserFlags) { *f &^= x }

// ChannelFlags is the per-channel flag set
type ChannelFlags uint16

const (
	ChanSecret ChannelFlags = 1 << iota
	ChanModerated
	ChanNoExternal
	ChanTopicLock
)

func (f ChannelFlags) Has(x ChannelFlags) bool { return f&x != 0 }
func (f *ChannelFlags) Set(x ChannelFlags) { *f |= x }
func (f *ChannelFlags) Clear(x ChannelFlags) { *f &^= x }

// MemberFlags is the per-channel, per-slot membership flag set
type MemberFlags uint8

const (
	MemberJoined MemberFlags = 1 << iota
	MemberInvited
	MemberChanop
	MemberVoice
)

func (f MemberFlags) Has(x MemberFlags) bool { return f&x != 0 }
func (f *MemberFlags) Set(x MemberFlags) { *f |= x }
func (f *MemberFlags) Clear(x MemberFlags) { *f &^= x }

// prefix is the NAMES/WHOIS role marker, '@' for chanop and 'v' for voice
func (f MemberFlags) prefix() byte {
	switch {
	case f.Has(MemberChanop):
		return '@'
	case f.Has(MemberVoice):
		return 'v'
	}
	return 0
}

var userModeChars = []struct {
	char byte
	flag UserFlags
}{
	{'w', UserWallops},
	{'i', UserInvisible},
	{'o', UserOperator},
}

const userModeMask = UserWallops | UserInvisible | UserOperator

// userModeString renders the user modes in mask: '+' followed by the
// letters set in flags, then '-' followed by the letters cleared.
func userModeString(flags, mask UserFlags) string {
	mask &= userModeMask

	var b strings.Builder
	for _, sign := range []byte{'+', '-'} {
		test := flags & mask
		if sign == '-' {
			test = ^flags & mask
		}
		if test == 0 {
			continue
		}
		b.WriteByte(sign)
		for _, m := range userModeChars {
			if test.Has(m.flag) {
				b.WriteByte(m.char)
			}
		}
	}
	if b.Len() == 0 {
		return "+"
	}
	return b.String()
}

var chanModeChars = []struct {
	char byte
	flag ChannelFlags
}{
	{'s', ChanSecret},
	{'m', ChanModerated},
	{'n', ChanNoExternal},
	{'t', ChanTopicLock},
}

// ParseChannelModes converts a mode letter string such as "nt" into
// channel flags. A leading '+' is accepted.
func ParseChannelModes(s string) (ChannelFlags, bool) {
	var flags ChannelFlags
	for i := 0; i < len(s); i++ {
		if i == 0 && s[i] == '+' {
			continue
		}
		found := false
		for _, m := range chanModeChars {
			if m.char == s[i] {
				flags.Set(m.flag)
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return flags, true
}
