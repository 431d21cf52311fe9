package irc

import "strings"

func (s *Server) handleJoin(u *User, msg *Message) {
	if msg.Params[0] == "0" {
		for i := range s.channels {
			c := &s.channels[i]
			if c.count > 0 && c.joined(u) {
				s.part(u, c, "Left all channels")
			}
		}
		return
	}

	for _, name := range strings.Split(msg.Params[0], ",") {
		if name != "" {
			s.join(u, name)
		}
	}
}

// join adds u to the named channel, creating it if needed, and sends the
// topic and member list
func (s *Server) join(u *User, name string) {
	c := s.findChannel(name)
	var flags MemberFlags
	if c != nil {
		if c.joined(u) {
			return
		}
	} else {
		var err error
		if c, err = s.createChannel(name); err != nil {
			s.numeric(u, ERR_NOSUCHCHANNEL, name, "No such channel")
			return
		}
		flags = MemberChanop
	}

	c.join(u, flags)
	s.toChannel(c, s.relayMsg(u, "JOIN", c.Name()), nil)

	if c.topic != "" {
		s.numeric(u, RPL_TOPIC, c.Name(), c.topic)
	}
	s.sendNames(u, c, true)
}

// sendNames sends c's member list to u in as many 353 lines as needed
func (s *Server) sendNames(u *User, c *Channel, showInvisible bool) {
	var cur pageCursor
	limit := s.pageBudget(u, RPL_NAMREPLY, "=", c.Name())
	for {
		names, ok := s.memberPage(c, &cur, limit, showInvisible)
		if !ok {
			break
		}
		s.numeric(u, RPL_NAMREPLY, "=", c.Name(), names)
	}
	s.numeric(u, RPL_ENDOFNAMES, c.Name(), "End of NAMES list")
}

func (s *Server) handlePart(u *User, msg *Message) {
	reason := msg.Param(1)
	for _, name := range strings.Split(msg.Params[0], ",") {
		if name == "" {
			continue
		}
		c := s.findChannel(name)
		if c == nil {
			s.numeric(u, ERR_NOSUCHCHANNEL, name, "No such channel")
			continue
		}
		if !c.joined(u) {
			s.numeric(u, ERR_NOTONCHANNEL, c.Name(), "You're not on that channel")
			continue
		}
		s.part(u, c, reason)
	}
}

// part tells c's members that u left, then removes u
func (s *Server) part(u *User, c *Channel, reason string) {
	params := []string{c.Name()}
	if reason != "" {
		params = append(params, reason)
	}
	s.toChannel(c, s.relayMsg(u, "PART", params...), nil)
	c.leave(u)
}

func (s *Server) handleTopic(u *User, msg *Message) {
	c := s.findChannel(msg.Params[0])
	if c == nil {
		s.numeric(u, ERR_NOSUCHCHANNEL, msg.Params[0], "No such channel")
		return
	}
	joined := c.joined(u)

	if len(msg.Params) < 2 {
		switch {
		case !joined && c.flags.Has(ChanSecret):
			s.numeric(u, ERR_NOTONCHANNEL, c.Name(), "You're not on that channel")
		case c.topic == "":
			s.numeric(u, RPL_NOTOPIC, c.Name(), "No topic is set.")
		default:
			s.numeric(u, RPL_TOPIC, c.Name(), c.topic)
		}
		return
	}

	if !joined {
		s.numeric(u, ERR_NOTONCHANNEL, c.Name(), "You're not on that channel")
		return
	}
	privileged := c.members[u.slot].Has(MemberChanop) || u.flags.Has(UserOperator)
	if !privileged && c.flags.Has(ChanTopicLock) {
		s.numeric(u, ERR_CHANOPRIVSNEEDED, c.Name(), "You're not channel operator")
		return
	}

	c.topic = truncate(msg.Params[1], s.cfg.Limits.Topic)
	s.toChannel(c, s.relayMsg(u, "TOPIC", c.Name(), c.topic), nil)
}

func (s *Server) handleNames(u *User, msg *Message) {
	name := msg.Param(0)
	if c := s.findChannel(name); c != nil {
		s.sendNames(u, c, c.joined(u))
		return
	}
	if name == "" {
		name = "*"
	}
	s.numeric(u, RPL_ENDOFNAMES, name, "End of NAMES list")
}
