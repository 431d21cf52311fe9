package irc

import (
	"strconv"
	"time"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/dalnet/tinyircd/internal/metrics"
)

// Tick advances every connected user's idle counter by one clock period,
// pinging idle users and disconnecting those past their timeout.
func (s *Server) Tick() {
	ka := s.cfg.Keepalive

	for i := range s.users {
		u := &s.users[i]
		if !u.connected() {
			continue
		}

		if !u.registered() && u.idle >= ka.UnregisteredTimeout {
			s.timeout(u)
			continue
		}

		if u.pingSent && u.idle < ka.PingTime {
			u.pingSent = false
		}

		if !u.pingSent && u.idle >= ka.PingTime {
			ping := ircmsg.MakeMessage(nil, "", "PING", s.cfg.ServerName)
			ping.ForceTrailing()
			s.send(u, ping)
			u.pingSent = true
			metrics.PingsSent.Inc()
		}

		if u.idle >= ka.PingTimeout {
			s.timeout(u)
			continue
		}

		u.idle++
	}
}

func (s *Server) timeout(u *User) {
	secs := int((time.Duration(u.idle) * s.cfg.Keepalive.Tick).Seconds())
	s.disconnect(u, "", "Ping timeout: "+strconv.Itoa(secs)+" seconds", metrics.ReasonTimeout)
}
