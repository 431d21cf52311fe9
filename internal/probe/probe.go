// Package probe is a small IRC client that checks a running daemon end to
// end: it registers, asks for LUSERS, optionally joins a channel and
// speaks, then quits.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
)

// ErrTimeout is returned when the daemon does not complete the probe
// before the context ends
var ErrTimeout = errors.New("probe: timed out")

// Options configures a probe run
type Options struct {
	Server   string
	Nick     string
	User     string
	RealName string
	// Channel is joined when set
	Channel string
	// Message is sent to Channel once joined
	Message string
	Debug   bool
}

// Report is what the probe observed
type Report struct {
	Welcome string
	Luser   string
	Joined  bool
}

type prober struct {
	opts Options
	conn *ircevent.Connection

	mu     sync.Mutex
	report Report
	done   chan struct{}
	once   sync.Once
}

// Run connects to opts.Server and walks through the probe sequence. It
// returns once the sequence completes or ctx is done.
func Run(ctx context.Context, opts Options) (Report, error) {
	if opts.User == "" {
		opts.User = opts.Nick
	}
	if opts.RealName == "" {
		opts.RealName = opts.Nick
	}

	p := &prober{
		opts: opts,
		done: make(chan struct{}),
	}
	p.conn = &ircevent.Connection{
		Server:      opts.Server,
		Nick:        opts.Nick,
		User:        opts.User,
		RealName:    opts.RealName,
		QuitMessage: "probe complete",
		Debug:       opts.Debug,
	}
	p.registerHandlers()

	if err := p.conn.Connect(); err != nil {
		return Report{}, fmt.Errorf("connect %s: %w", opts.Server, err)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		p.conn.Loop()
	}()

	var err error
	select {
	case <-p.done:
	case <-ctx.Done():
		err = ErrTimeout
	}

	p.conn.Quit()
	select {
	case <-loopDone:
	case <-time.After(5 * time.Second):
		log.Printf("probe: connection did not close")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report, err
}

func (p *prober) registerHandlers() {
	p.conn.AddCallback("001", p.onWelcome)
	p.conn.AddCallback("251", p.onLuserClient) // RPL_LUSERCLIENT
	p.conn.AddCallback("JOIN", p.onJoin)
	p.conn.AddCallback("403", p.onNoSuchChannel)
}

func (p *prober) finish() {
	p.once.Do(func() { close(p.done) })
}

func (p *prober) onWelcome(e ircmsg.Message) {
	p.mu.Lock()
	p.report.Welcome = lastParam(e)
	p.mu.Unlock()

	p.conn.Send("LUSERS")
}

func (p *prober) onLuserClient(e ircmsg.Message) {
	p.mu.Lock()
	p.report.Luser = lastParam(e)
	p.mu.Unlock()

	if p.opts.Channel == "" {
		p.finish()
		return
	}
	if err := p.conn.Join(p.opts.Channel); err != nil {
		log.Printf("probe: join %s: %v", p.opts.Channel, err)
		p.finish()
	}
}

func (p *prober) onJoin(e ircmsg.Message) {
	if e.Nick() != p.conn.CurrentNick() {
		return
	}

	p.mu.Lock()
	p.report.Joined = true
	p.mu.Unlock()

	if p.opts.Message != "" {
		if err := p.conn.Privmsg(p.opts.Channel, p.opts.Message); err != nil {
			log.Printf("probe: privmsg %s: %v", p.opts.Channel, err)
		}
	}
	p.finish()
}

func (p *prober) onNoSuchChannel(e ircmsg.Message) {
	log.Printf("probe: cannot join %s", p.opts.Channel)
	p.finish()
}

func lastParam(e ircmsg.Message) string {
	if len(e.Params) == 0 {
		return ""
	}
	return e.Params[len(e.Params)-1]
}
