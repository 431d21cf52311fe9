package irc

import (
	"context"
	"fmt"
	"log"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/dalnet/tinyircd/internal/config"
	"github.com/dalnet/tinyircd/internal/metrics"
	"github.com/dalnet/tinyircd/internal/transport"
)

// Version information (set at build time or here)
var (
	Version   = "tinyircd-1.0.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Transport is the connection side the engine writes to. Connections are
// identified by remote address and port.
type Transport interface {
	Send(addr netip.AddrPort, data []byte) error
	Disconnect(addr netip.AddrPort) error
}

// Auditor records operator events
type Auditor interface {
	Record(entry string) error
}

// Server is the protocol engine. It owns the fixed user and channel
// tables and must only be driven from one goroutine.
type Server struct {
	cfg       *config.Config
	transport Transport
	users     []User
	channels  []Channel
	chanModes ChannelFlags
	created   time.Time
	page      []byte

	// MOTD lines; empty means "MOTD File is missing"
	MOTD []string
	// Audit receives operator events when set
	Audit Auditor
}

// User is one connection slot
type User struct {
	slot     int
	addr     netip.AddrPort
	session  uuid.UUID
	framer   Framer
	nick     string
	user     string
	real     string
	away     string
	flags    UserFlags
	idle     int
	pingSent bool
}

// Channel is one channel slot. It is live while count is nonzero.
type Channel struct {
	name    string
	topic   string
	count   int
	members []MemberFlags
	flags   ChannelFlags
}

// New creates the engine with tables sized from cfg
func New(cfg *config.Config, t Transport) (*Server, error) {
	modes, ok := ParseChannelModes(cfg.DefaultChannelModes)
	if !ok {
		return nil, fmt.Errorf("invalid default_channel_modes %q", cfg.DefaultChannelModes)
	}

	s := &Server{
		cfg:       cfg,
		transport: t,
		users:     make([]User, cfg.MaxUsers),
		channels:  make([]Channel, cfg.MaxChannels),
		chanModes: modes,
		created:   time.Now(),
		page:      make([]byte, 0, cfg.Limits.Line),
	}
	for i := range s.users {
		s.users[i].slot = i
		s.users[i].framer = NewFramer(cfg.Limits.Line)
	}
	for i := range s.channels {
		s.channels[i].members = make([]MemberFlags, cfg.MaxUsers)
	}
	return s, nil
}

// Run processes transport events and keepalive ticks strictly in order
// until ctx is done or events is closed.
func (s *Server) Run(ctx context.Context, events <-chan transport.Event) error {
	ticker := time.NewTicker(s.cfg.Keepalive.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Shutdown("Server shutting down")
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.HandleEvent(ev)
		case <-ticker.C:
			s.Tick()
		}
		s.observe()
	}
}

// HandleEvent applies one transport event
func (s *Server) HandleEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.EventConnect:
		if _, err := s.Accept(ev.Addr, ev.Session); err != nil {
			log.Printf("ircd: rejecting session %s from %s: %v", ev.Session, ev.Addr, err)
			s.rejectFull(ev.Addr)
		}
	case transport.EventData:
		s.Receive(ev.Addr, ev.Data)
	case transport.EventClose:
		s.Closed(ev.Addr)
	}
}

// Accept places a new connection in a free user slot
func (s *Server) Accept(addr netip.AddrPort, session uuid.UUID) (*User, error) {
	u := s.allocUser()
	if u == nil {
		return nil, ErrServerFull
	}

	slot, framer := u.slot, u.framer
	framer.Reset()
	*u = User{
		slot:    slot,
		addr:    addr,
		session: session,
		framer:  framer,
		flags:   UserConnected,
	}

	log.Printf("ircd: u%d connected from %s (session %s)", u.slot, addr, session)
	return u, nil
}

func (s *Server) rejectFull(addr netip.AddrPort) {
	metrics.DisconnectsTotal.WithLabelValues(metrics.ReasonFull).Inc()
	if err := s.transport.Send(addr, []byte("ERROR :SERVER IS FULL\r\n")); err != nil {
		log.Printf("ircd: %v", err)
	}
	if err := s.transport.Disconnect(addr); err != nil {
		log.Printf("ircd: %v", err)
	}
}

// Receive feeds inbound bytes from addr through the user's framer and
// dispatches every complete line
func (s *Server) Receive(addr netip.AddrPort, data []byte) {
	u := s.userByAddr(addr)
	if u == nil {
		return
	}

	u.idle = 0
	u.pingSent = false

	u.framer.Write(data, func(line string) bool {
		if s.cfg.Debug {
			log.Printf("u%2d >> %s", u.slot, line)
		}
		if msg, ok := ParseMessage(line, s.cfg.MaxParams); ok {
			s.dispatch(u, &msg)
		}
		return u.flags.Has(UserConnected)
	})
}

// Closed handles a transport-reported disconnect for addr
func (s *Server) Closed(addr netip.AddrPort) {
	u := s.userByAddr(addr)
	if u == nil {
		return
	}

	u.flags.Clear(UserConnected)
	log.Printf("ircd: u%d closed by peer (session %s)", u.slot, u.session)
	s.disconnect(u, "", "Client exited", metrics.ReasonTransport)
}

// Shutdown disconnects every connected user with reason
func (s *Server) Shutdown(reason string) {
	for i := range s.users {
		u := &s.users[i]
		if u.connected() {
			s.disconnect(u, "", reason, metrics.ReasonShutdown)
		}
	}
}

func (s *Server) observe() {
	var connected, registered, channels int
	for i := range s.users {
		if s.users[i].connected() {
			connected++
			if s.users[i].registered() {
				registered++
			}
		}
	}
	for i := range s.channels {
		if s.channels[i].count > 0 {
			channels++
		}
	}
	metrics.ObserveTables(connected, registered, channels)
}

func (s *Server) audit(entry string) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(entry); err != nil {
		log.Printf("ircd: audit: %v", err)
	}
}

func (u *User) connected() bool { return u.flags.Has(UserConnected) }
func (u *User) registered() bool { return u.flags.Has(UserRegistered) }

// name is the nickname as used in numeric replies
func (u *User) name() string {
	if u.nick == "" {
		return "*"
	}
	return u.nick
}

func (u *User) host() string {
	return u.addr.Addr().String()
}

// mask is the nick!user@host source of lines the user originates
func (u *User) mask() string {
	return u.nick + "!" + u.user + "@" + u.host()
}

func (c *Channel) Name() string {
	return "#" + c.name
}

func (c *Channel) joined(u *User) bool {
	return c.members[u.slot].Has(MemberJoined)
}

func (c *Channel) join(u *User, flags MemberFlags) {
	c.members[u.slot] = flags | MemberJoined
	c.count++
}

func (c *Channel) leave(u *User) {
	if !c.joined(u) {
		return
	}
	c.members[u.slot] = 0
	c.count--
}
