package irc

import (
	"github.com/ergochat/irc-go/ircmsg"

	"github.com/dalnet/tinyircd/internal/metrics"
)

func (s *Server) handlePing(u *User, msg *Message) {
	origin := msg.Param(0)
	if origin == "" {
		s.numeric(u, ERR_NOORIGIN, "No origin specified")
		return
	}

	pong := ircmsg.MakeMessage(nil, s.cfg.ServerName, "PONG", s.cfg.ServerName, origin)
	pong.ForceTrailing()
	s.send(u, pong)
}

// PONG needs no reply; receiving it already reset the idle counter
func (s *Server) handlePong(u *User, msg *Message) {
	if msg.Param(0) == "" {
		s.numeric(u, ERR_NOORIGIN, "No origin specified")
	}
}

func (s *Server) handleQuit(u *User, msg *Message) {
	reason := msg.Param(0)
	if reason == "" {
		reason = u.nick
	}
	s.disconnect(u, "Quit: ", reason, metrics.ReasonQuit)
}
