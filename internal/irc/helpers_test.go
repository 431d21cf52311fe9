package irc

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dalnet/tinyircd/internal/config"
	"github.com/dalnet/tinyircd/internal/transport"
)

// fakeTransport records every line sent per connection
type fakeTransport struct {
	lines  map[netip.AddrPort][]string
	closed map[netip.AddrPort]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		lines:  make(map[netip.AddrPort][]string),
		closed: make(map[netip.AddrPort]bool),
	}
}

func (f *fakeTransport) Send(addr netip.AddrPort, data []byte) error {
	for _, line := range strings.SplitAfter(string(data), "\r\n") {
		if line != "" {
			f.lines[addr] = append(f.lines[addr], line)
		}
	}
	return nil
}

func (f *fakeTransport) Disconnect(addr netip.AddrPort) error {
	f.closed[addr] = true
	return nil
}

type fakeAuditor struct {
	entries []string
}

func (a *fakeAuditor) Record(entry string) error {
	a.entries = append(a.entries, entry)
	return nil
}

type harness struct {
	t   *testing.T
	cfg *config.Config
	srv *Server
	tr  *fakeTransport
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ServerName = "irc.test"
	cfg.Network = "test network"
	return cfg
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	tr := newFakeTransport()
	srv, err := New(cfg, tr)
	require.NoError(t, err)
	return &harness{t: t, cfg: cfg, srv: srv, tr: tr}
}

func addrFor(port uint16) netip.AddrPort {
	return netip.AddrPortFrom(netip.MustParseAddr("10.0.0.1"), port)
}

func (h *harness) connect(port uint16) netip.AddrPort {
	addr := addrFor(port)
	h.srv.HandleEvent(transport.Event{Kind: transport.EventConnect, Addr: addr, Session: uuid.New()})
	return addr
}

// send delivers each line, CRLF terminated, as its own chunk
func (h *harness) send(addr netip.AddrPort, lines ...string) {
	for _, line := range lines {
		h.srv.HandleEvent(transport.Event{Kind: transport.EventData, Addr: addr, Data: []byte(line + "\r\n")})
	}
	h.checkMembership()
}

// register connects and completes registration for nick, discarding the
// welcome output
func (h *harness) register(port uint16, nick string) netip.AddrPort {
	addr := h.connect(port)
	h.send(addr, "NICK "+nick, "USER "+strings.ToLower(nick)+" 0 * :"+nick+" Real")
	h.drain(addr)
	return addr
}

// drain returns and forgets everything sent to addr so far
func (h *harness) drain(addr netip.AddrPort) []ircmsg.Message {
	h.t.Helper()
	var msgs []ircmsg.Message
	for _, line := range h.tr.lines[addr] {
		require.True(h.t, strings.HasSuffix(line, "\r\n"), "unterminated line %q", line)
		msg, err := ircmsg.ParseLine(line)
		require.NoError(h.t, err, "line %q", line)
		msgs = append(msgs, msg)
	}
	delete(h.tr.lines, addr)
	return msgs
}

// checkMembership verifies that every live channel's count matches its
// joined slots and that only connected users are joined
func (h *harness) checkMembership() {
	h.t.Helper()
	for i := range h.srv.channels {
		c := &h.srv.channels[i]
		if c.count == 0 {
			continue
		}
		joined := 0
		for slot, m := range c.members {
			if !m.Has(MemberJoined) {
				continue
			}
			joined++
			require.True(h.t, h.srv.users[slot].connected(), "slot %d joined to %s while disconnected", slot, c.Name())
		}
		require.Equal(h.t, c.count, joined, "member count of %s", c.Name())
	}
}

func commandsOf(msgs []ircmsg.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Command
	}
	return out
}

func lastParam(m ircmsg.Message) string {
	if len(m.Params) == 0 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

func find(msgs []ircmsg.Message, command string) []ircmsg.Message {
	var out []ircmsg.Message
	for _, m := range msgs {
		if m.Command == command {
			out = append(out, m)
		}
	}
	return out
}
