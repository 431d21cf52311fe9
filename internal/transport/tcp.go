// Package transport accepts TCP connections and turns them into a single
// ordered stream of connect, data and close events keyed by remote
// address, so that the protocol engine can run on one goroutine.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/netip"
	"sync"

	"github.com/google/uuid"
)

// EventKind identifies a transport event
type EventKind int

const (
	EventConnect EventKind = iota
	EventData
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventData:
		return "data"
	case EventClose:
		return "close"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is delivered for every accepted connection, every chunk read
// from it and its remote close. Session identifies the connection in
// logs on both sides of the channel.
type Event struct {
	Kind    EventKind
	Addr    netip.AddrPort
	Session uuid.UUID
	Data    []byte
}

var (
	ErrUnknownConn = errors.New("transport: unknown connection")
	ErrClosed      = errors.New("transport: listener closed")
)

const readChunk = 512

type conn struct {
	nc      net.Conn
	session uuid.UUID
	// closing is set when the server side initiated the disconnect; no
	// close event is emitted for it
	closing bool
}

// Listener is the TCP transport
type Listener struct {
	ln     net.Listener
	events chan Event
	done   chan struct{}

	mu    sync.Mutex
	conns map[netip.AddrPort]*conn
	wg    sync.WaitGroup
	once  sync.Once
}

// Listen opens the TCP listener on addr
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &Listener{
		ln:     ln,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		conns:  make(map[netip.AddrPort]*conn),
	}, nil
}

// Addr returns the bound listener address
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Events returns the ordered event stream
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Serve accepts connections until ctx is done or the listener is closed
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-l.done:
		}
	}()

	for {
		nc, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.done:
				return nil
			default:
			}
			return fmt.Errorf("accept: %w", err)
		}

		addr, ok := remoteAddrPort(nc)
		if !ok {
			log.Printf("transport: rejecting connection with unusable address %v", nc.RemoteAddr())
			nc.Close()
			continue
		}

		c := &conn{nc: nc, session: uuid.New()}
		l.mu.Lock()
		select {
		case <-l.done:
			l.mu.Unlock()
			nc.Close()
			return nil
		default:
		}
		l.conns[addr] = c
		l.wg.Add(1)
		l.mu.Unlock()

		log.Printf("transport: session %s accepted from %s", c.session, addr)

		// connect is queued before the reader starts so data never
		// overtakes it
		if !l.emit(Event{Kind: EventConnect, Addr: addr, Session: c.session}) {
			nc.Close()
			l.wg.Done()
			return nil
		}

		go l.read(addr, c)
	}
}

func (l *Listener) read(addr netip.AddrPort, c *conn) {
	defer l.wg.Done()

	buf := make([]byte, readChunk)
	for {
		n, err := c.nc.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if !l.emit(Event{Kind: EventData, Addr: addr, Session: c.session, Data: data}) {
				return
			}
		}
		if err != nil {
			break
		}
	}

	l.mu.Lock()
	closing := c.closing
	if l.conns[addr] == c {
		delete(l.conns, addr)
	}
	l.mu.Unlock()
	c.nc.Close()

	log.Printf("transport: session %s from %s closed", c.session, addr)

	if !closing {
		l.emit(Event{Kind: EventClose, Addr: addr, Session: c.session})
	}
}

func (l *Listener) emit(ev Event) bool {
	select {
	case l.events <- ev:
		return true
	case <-l.done:
		return false
	}
}

// Send writes one or more complete lines to the connection at addr
func (l *Listener) Send(addr netip.AddrPort, data []byte) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}

	l.mu.Lock()
	c, ok := l.conns[addr]
	l.mu.Unlock()
	if !ok {
		return ErrUnknownConn
	}

	if _, err := c.nc.Write(data); err != nil {
		return fmt.Errorf("send to %s: %w", addr, err)
	}
	return nil
}

// Disconnect closes the connection at addr without emitting a close event
func (l *Listener) Disconnect(addr netip.AddrPort) error {
	l.mu.Lock()
	c, ok := l.conns[addr]
	if ok {
		c.closing = true
		delete(l.conns, addr)
	}
	l.mu.Unlock()
	if !ok {
		return ErrUnknownConn
	}
	return c.nc.Close()
}

// Close stops accepting, drops every connection and waits for readers
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		err = l.ln.Close()

		l.mu.Lock()
		for addr, c := range l.conns {
			c.closing = true
			c.nc.Close()
			delete(l.conns, addr)
		}
		l.mu.Unlock()

		l.wg.Wait()
	})
	return err
}

func remoteAddrPort(nc net.Conn) (netip.AddrPort, bool) {
	tcp, ok := nc.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return netip.AddrPort{}, false
	}
	ap := tcp.AddrPort()
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), ap.IsValid()
}
