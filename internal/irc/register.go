package irc

import "log"

// validNick checks the nickname alphabet: a first character in 'A'..'}'
// and then '-', digits or 'A'..'}'
func validNick(nick string) bool {
	if nick == "" || nick[0] < 'A' || nick[0] > '}' {
		return false
	}
	for i := 1; i < len(nick); i++ {
		c := nick[i]
		if c == '-' || (c >= '0' && c <= '9') || (c >= 'A' && c <= '}') {
			continue
		}
		return false
	}
	return true
}

func (s *Server) handleNick(u *User, msg *Message) {
	want := msg.Param(0)
	if want == "" {
		s.numeric(u, ERR_NONICKNAMEGIVEN, "No nickname given")
		return
	}
	if !validNick(want) {
		s.numeric(u, ERR_ERRONEUSNICKNAME, want, "Erroneous Nickname: Illegal characters")
		return
	}
	if other := s.findUser(want); other != nil && other != u {
		s.numeric(u, ERR_NICKNAMEINUSE, want, "Nickname is already in use.")
		return
	}

	want = truncate(want, s.cfg.Limits.Nick)
	if want == u.nick {
		return
	}

	change := s.relayMsg(u, "NICK", want)
	u.nick = want

	if !u.registered() {
		if u.user != "" {
			s.welcome(u)
		}
		return
	}

	if s.inAnyChannel(u) {
		s.broadcast(u, change)
	} else {
		s.send(u, change)
	}
}

func (s *Server) handleUser(u *User, msg *Message) {
	if u.registered() || u.user != "" {
		s.numeric(u, ERR_ALREADYREGISTRED, "You may not reregister")
		return
	}

	u.user = truncate(msg.Params[0], s.cfg.Limits.User)
	u.real = truncate(msg.Params[3], s.cfg.Limits.Real)

	if u.nick != "" {
		s.welcome(u)
	}
}

// welcome completes registration
func (s *Server) welcome(u *User) {
	s.numeric(u, RPL_WELCOME, "Welcome to the Internet Relay Network "+u.mask())
	s.numeric(u, RPL_YOURHOST, "Your host is "+s.cfg.ServerName+", running version "+Version)
	s.numeric(u, RPL_CREATED, "This server was created "+s.created.Format("Mon Jan 2 2006 at 15:04:05 MST"))
	s.numeric(u, RPL_MYINFO, s.cfg.ServerName, Version, "iow", "smnt")

	u.flags.Set(UserRegistered | UserWallops | UserInvisible)

	s.sendSelfMode(u, userModeString(u.flags, u.flags))

	s.sendMotd(u)
	log.Printf("ircd: u%d registered as %s", u.slot, u.mask())
}

func (s *Server) inAnyChannel(u *User) bool {
	for i := range s.channels {
		if c := &s.channels[i]; c.count > 0 && c.joined(u) {
			return true
		}
	}
	return false
}
