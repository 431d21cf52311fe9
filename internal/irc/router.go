package irc

import (
	"log"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/dalnet/tinyircd/internal/metrics"
)

// format renders msg as one wire line bounded to the line limit, CRLF
// included. It returns nil if msg cannot be encoded.
func (s *Server) format(msg ircmsg.Message) []byte {
	line, err := msg.Line()
	if err != nil {
		log.Printf("ircd: dropping %s: %v", msg.Command, err)
		return nil
	}
	line = strings.TrimSuffix(line, "\r\n")
	line = truncate(line, s.cfg.Limits.Line)
	return []byte(line + "\r\n")
}

func (s *Server) sendLine(u *User, line []byte) {
	if line == nil || !u.connected() {
		return
	}
	if s.cfg.Debug {
		log.Printf("u%2d << %s", u.slot, line[:len(line)-2])
	}
	if err := s.transport.Send(u.addr, line); err != nil {
		log.Printf("ircd: send to u%d: %v", u.slot, err)
	}
}

func (s *Server) send(u *User, msg ircmsg.Message) {
	s.sendLine(u, s.format(msg))
}

func (s *Server) numericMsg(u *User, code string, params ...string) ircmsg.Message {
	all := make([]string, 0, len(params)+1)
	all = append(all, u.name())
	for i, p := range params {
		if i < len(params)-1 {
			p = middleParam(p)
		}
		all = append(all, p)
	}
	msg := ircmsg.MakeMessage(nil, s.cfg.ServerName, code, all...)
	msg.ForceTrailing()
	return msg
}

// middleParam replaces an echoed argument that cannot be sent as a
// middle parameter with "*"
func middleParam(p string) string {
	if p == "" || p[0] == ':' || strings.ContainsAny(p, " \r\n\x00") {
		return "*"
	}
	return p
}

// numeric sends a server numeric reply addressed to u
func (s *Server) numeric(u *User, code string, params ...string) {
	s.send(u, s.numericMsg(u, code, params...))
}

// relayMsg builds a line originated by u
func (s *Server) relayMsg(u *User, command string, params ...string) ircmsg.Message {
	msg := ircmsg.MakeMessage(nil, u.mask(), command, params...)
	msg.ForceTrailing()
	return msg
}

// broadcast sends msg once to every connected user sharing at least one
// channel with from
func (s *Server) broadcast(from *User, msg ircmsg.Message) {
	line := s.format(msg)
	for i := range s.users {
		other := &s.users[i]
		if other.connected() && s.sharesChannel(from, other) {
			s.sendLine(other, line)
		}
	}
}

// toChannel sends msg to every connected member of c except skip
func (s *Server) toChannel(c *Channel, msg ircmsg.Message, skip *User) {
	line := s.format(msg)
	for i := range s.users {
		other := &s.users[i]
		if other == skip || !other.connected() || !c.joined(other) {
			continue
		}
		s.sendLine(other, line)
	}
}

// disconnect tells everyone sharing a channel with u that it quit, drops
// its memberships and, if the connection is still up, closes it.
func (s *Server) disconnect(u *User, prefix, reason, kind string) {
	text := prefix + reason
	s.broadcast(u, s.relayMsg(u, "QUIT", text))

	for i := range s.channels {
		c := &s.channels[i]
		if c.count > 0 {
			c.leave(u)
		}
	}

	metrics.DisconnectsTotal.WithLabelValues(kind).Inc()

	if !u.connected() {
		return
	}

	msg := ircmsg.MakeMessage(nil, "", "ERROR", "Closing Link: "+u.nick+"["+u.host()+"] ("+text+")")
	msg.ForceTrailing()
	s.send(u, msg)
	if err := s.transport.Disconnect(u.addr); err != nil {
		log.Printf("ircd: disconnect u%d: %v", u.slot, err)
	}
	u.flags.Clear(UserConnected)
	log.Printf("ircd: u%d disconnected (session %s): %s", u.slot, u.session, text)
}
