package irc

import (
	"strconv"
	"strings"
)

// otherServer replies 402 and reports true when msg names a server other
// than this one
func (s *Server) otherServer(u *User, msg *Message) bool {
	name := msg.Param(0)
	if name == "" || strings.EqualFold(name, s.cfg.ServerName) {
		return false
	}
	s.numeric(u, ERR_NOSUCHSERVER, name, "No such server")
	return true
}

func (s *Server) handleMotd(u *User, msg *Message) {
	if s.otherServer(u, msg) {
		return
	}
	s.sendMotd(u)
}

func (s *Server) sendMotd(u *User) {
	if len(s.MOTD) == 0 {
		s.numeric(u, ERR_NOMOTD, "MOTD File is missing")
		return
	}

	s.numeric(u, RPL_MOTDSTART, "- "+s.cfg.ServerName+" Message of the day - ")
	for _, line := range s.MOTD {
		s.numeric(u, RPL_MOTD, "- "+line)
	}
	s.numeric(u, RPL_ENDOFMOTD, "End of MOTD command")
}

func (s *Server) handleInfo(u *User, msg *Message) {
	if s.otherServer(u, msg) {
		return
	}
	s.numeric(u, RPL_INFO, Version)
	s.numeric(u, RPL_INFO, "Built "+BuildDate+" from commit "+GitCommit)
	s.numeric(u, RPL_INFO, "Up since "+s.created.Format("Mon Jan 2 2006 at 15:04:05 MST"))
	s.numeric(u, RPL_ENDOFINFO, "End of INFO list")
}

func (s *Server) handleVersion(u *User, msg *Message) {
	if s.otherServer(u, msg) {
		return
	}
	s.numeric(u, RPL_VERSION, Version+".", s.cfg.ServerName, "Fixed-capacity IRC daemon")
}

func (s *Server) handleLusers(u *User, msg *Message) {
	if s.otherServer(u, msg) {
		return
	}

	var visible, invisible, opers, chans int
	for i := range s.users {
		other := &s.users[i]
		if !other.connected() {
			continue
		}
		if other.flags.Has(UserInvisible) {
			invisible++
		} else {
			visible++
		}
		if other.flags.Has(UserOperator) {
			opers++
		}
	}
	for i := range s.channels {
		if s.channels[i].count > 0 {
			chans++
		}
	}

	s.numeric(u, RPL_LUSERCLIENT, "There are "+strconv.Itoa(visible)+" users and "+
		strconv.Itoa(invisible)+" invisible on 1 servers")
	s.numeric(u, RPL_LUSEROP, strconv.Itoa(opers), "operator(s) online")
	s.numeric(u, RPL_LUSERCHANNELS, strconv.Itoa(chans), "channels formed")
	s.numeric(u, RPL_LUSERME, "I have "+strconv.Itoa(visible+invisible)+" clients and 0 servers")
}

// whoReply sends one 352 line describing target, as seen on channel
// (or "*")
func (s *Server) whoReply(u, target *User, channel string, member MemberFlags) {
	status := "H"
	if target.flags.Has(UserAway) {
		status = "G"
	}
	if target.flags.Has(UserOperator) {
		status += "*"
	}
	if role := member.prefix(); role != 0 {
		status += string(role)
	}
	s.numeric(u, RPL_WHOREPLY, channel, target.user, target.host(), s.cfg.ServerName,
		target.nick, status, "0 "+target.real)
}

// canSee reports whether an invisible target shows up in u's listings
func canSee(u, target *User) bool {
	return !target.flags.Has(UserInvisible) || u == target || u.flags.Has(UserOperator)
}

func (s *Server) handleWho(u *User, msg *Message) {
	mask := msg.Param(0)

	switch {
	case mask == "":
		for i := range s.users {
			target := &s.users[i]
			if target.connected() && target.registered() && canSee(u, target) {
				s.whoReply(u, target, "*", 0)
			}
		}
		mask = "*"

	case strings.HasPrefix(mask, "#"):
		c := s.findChannel(mask)
		if c == nil {
			break
		}
		joined := c.joined(u)
		if c.flags.Has(ChanSecret) && !joined && !u.flags.Has(UserOperator) {
			break
		}
		for i := range s.users {
			target := &s.users[i]
			if !target.connected() || !c.joined(target) {
				continue
			}
			if joined || canSee(u, target) {
				s.whoReply(u, target, c.Name(), c.members[target.slot])
			}
		}

	default:
		if target := s.findUser(mask); target != nil && target.registered() {
			s.whoReply(u, target, "*", 0)
		}
	}

	s.numeric(u, RPL_ENDOFWHO, mask, "End of WHO list")
}

func (s *Server) handleWhois(u *User, msg *Message) {
	nick := msg.Param(0)
	if nick == "" {
		s.numeric(u, ERR_NONICKNAMEGIVEN, "No nickname given")
		return
	}

	target := s.findUser(nick)
	if target == nil || !target.registered() {
		s.numeric(u, ERR_NOSUCHNICK, nick, "No such nick/channel")
		s.numeric(u, RPL_ENDOFWHOIS, nick, "End of WHOIS list")
		return
	}

	s.numeric(u, RPL_WHOISUSER, target.nick, target.user, target.host(), "*", target.real)

	if u.flags.Has(UserOperator) {
		s.numeric(u, RPL_WHOISMODES, target.nick, "is using modes "+userModeString(target.flags, target.flags))
		s.numeric(u, RPL_WHOISHOST, target.nick, "is connecting from *@"+target.host())
	}

	var cur pageCursor
	limit := s.pageBudget(u, RPL_WHOISCHANNELS, target.nick)
	for {
		chans, ok := s.channelPage(target, &cur, limit)
		if !ok {
			break
		}
		s.numeric(u, RPL_WHOISCHANNELS, target.nick, chans)
	}

	s.numeric(u, RPL_WHOISSERVER, target.nick, s.cfg.ServerName, s.cfg.Network)
	if target.flags.Has(UserOperator) {
		s.numeric(u, RPL_WHOISOPERATOR, target.nick, "is an IRC Operator")
	}
	if target.flags.Has(UserAway) {
		s.numeric(u, RPL_AWAY, target.nick, target.awayText())
	}
	s.numeric(u, RPL_ENDOFWHOIS, target.nick, "End of WHOIS list")
}
