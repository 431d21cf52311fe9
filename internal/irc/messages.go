package irc

func (s *Server) handlePrivmsg(u *User, msg *Message) {
	s.deliver(u, msg, "PRIVMSG")
}

// NOTICE replies with the same parameter errors as PRIVMSG but never
// with channel refusals or away notices.
func (s *Server) handleNotice(u *User, msg *Message) {
	s.deliver(u, msg, "NOTICE")
}

func (s *Server) deliver(u *User, msg *Message, verb string) {
	notice := verb == "NOTICE"

	target, text := msg.Param(0), msg.Param(1)
	if target == "" {
		s.numeric(u, ERR_NORECIPIENT, "No recipient given ("+verb+")")
		return
	}
	if text == "" {
		s.numeric(u, ERR_NOTEXTTOSEND, "No text to send")
		return
	}

	if c := s.findChannel(target); c != nil {
		member := c.members[u.slot]
		joined := member.Has(MemberJoined)
		switch {
		case !joined && c.flags.Has(ChanNoExternal):
			if !notice {
				s.numeric(u, ERR_CANNOTSENDTOCHAN, c.Name(), "No external channel messages ("+c.Name()+")")
			}
			return
		case c.flags.Has(ChanModerated) && !member.Has(MemberChanop|MemberVoice):
			if !notice {
				s.numeric(u, ERR_CANNOTSENDTOCHAN, c.Name(), "Cannot send to channel")
			}
			return
		}
		s.toChannel(c, s.relayMsg(u, verb, c.Name(), text), u)
		return
	}

	to := s.findUser(target)
	if to == nil {
		s.numeric(u, ERR_NOSUCHNICK, target, "No such nick/channel")
		return
	}
	if !notice && to.flags.Has(UserAway) {
		s.numeric(u, RPL_AWAY, to.nick, to.awayText())
	}
	s.send(to, s.relayMsg(u, verb, to.nick, text))
}

func (s *Server) handleWallops(u *User, msg *Message) {
	if !u.flags.Has(UserOperator) {
		s.numeric(u, ERR_NOPRIVILEGES, "Permission Denied- You're not an IRC operator")
		return
	}

	line := s.format(s.relayMsg(u, "WALLOPS", msg.Params[0]))
	for i := range s.users {
		to := &s.users[i]
		if to.connected() && to.flags.Has(UserWallops) {
			s.sendLine(to, line)
		}
	}
	s.audit("WALLOPS from " + u.mask() + ": " + msg.Params[0])
}

func (u *User) awayText() string {
	if u.away == "" {
		return "User is currently away"
	}
	return u.away
}
