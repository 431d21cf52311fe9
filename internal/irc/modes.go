package irc

import (
	"crypto/subtle"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// Channel modes are not settable over the wire; a channel target is
// accepted and ignored.
func (s *Server) handleMode(u *User, msg *Message) {
	target := msg.Params[0]
	if strings.HasPrefix(target, "#") {
		return
	}
	if !strings.EqualFold(target, u.nick) {
		s.numeric(u, ERR_USERSDONTMATCH, "Cannot change mode for other users")
		return
	}

	if len(msg.Params) < 2 {
		s.numeric(u, RPL_UMODEIS, userModeString(u.flags, u.flags))
		return
	}

	state := u.flags
	var dir byte
	unknown := false
	for _, c := range []byte(msg.Params[1]) {
		switch c {
		case '+', '-':
			dir = c
		case 'a':
		case 'w':
			state = applyMode(state, UserWallops, dir)
		case 'i':
			state = applyMode(state, UserInvisible, dir)
		case 'o':
			// only ever dropped here; OPER is the way in
			if dir == '-' {
				state.Clear(UserOperator)
			}
		default:
			unknown = true
		}
	}

	if unknown {
		s.numeric(u, ERR_UMODEUNKNOWNFLAG, "Unknown MODE flag")
	}

	if delta := state ^ u.flags; delta != 0 {
		s.sendSelfMode(u, userModeString(state, delta))
		u.flags = state
	}
}

func applyMode(flags, flag UserFlags, dir byte) UserFlags {
	switch dir {
	case '+':
		flags.Set(flag)
	case '-':
		flags.Clear(flag)
	}
	return flags
}

func (s *Server) sendSelfMode(u *User, modes string) {
	msg := ircmsg.MakeMessage(nil, u.nick, "MODE", u.nick, modes)
	msg.ForceTrailing()
	s.send(u, msg)
}

func (s *Server) handleOper(u *User, msg *Message) {
	if !equalSecret(msg.Params[0], s.cfg.Oper.Name) {
		s.numeric(u, ERR_NOOPERHOST, "No O-lines for your host")
		s.audit("OPER failed for " + u.mask() + ": bad name " + msg.Params[0])
		return
	}
	if !equalSecret(msg.Params[1], s.cfg.Oper.Password) {
		s.numeric(u, ERR_PASSWDMISMATCH, "Password incorrect")
		s.audit("OPER failed for " + u.mask() + ": bad password")
		return
	}

	if !u.flags.Has(UserOperator) {
		u.flags.Set(UserOperator)
		s.sendSelfMode(u, "+o")
	}
	s.numeric(u, RPL_YOUREOPER, "You are now an IRC Operator")
	s.audit("OPER by " + u.mask())
}

func equalSecret(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func (s *Server) handleAway(u *User, msg *Message) {
	text := msg.Param(0)
	if text == "" {
		u.flags.Clear(UserAway)
		u.away = ""
		s.numeric(u, RPL_UNAWAY, "You are no longer marked as being away")
		return
	}

	u.flags.Set(UserAway)
	u.away = truncate(text, s.cfg.Limits.Away)
	s.numeric(u, RPL_NOWAWAY, "You have been marked as being away")
}
