/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package session keeps the client's one connection to the game server and
// the mirrored game state it feeds.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Seednode/knockbox/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrNotJoined     = errors.New("identity not confirmed by server")
	ErrSendQueueFull = errors.New("send queue is full")
	ErrClosed        = errors.New("connection closed")
)

const (
	sendQueue    = 16
	inboundQueue = 64
	writeTimeout = 10 * time.Second
)

// Handler receives the data of one inbound event.
type Handler func(env protocol.Envelope)

// Subscriber is the part of Conn the store depends on.
type Subscriber interface {
	Subscribe(event string, h Handler) (unsubscribe func())
}

type Options struct {
	URL         string
	Reconnect   bool
	MaxAttempts int           // 0 retries forever
	Backoff     time.Duration // first delay between reconnect attempts
	MaxBackoff  time.Duration // cap on the doubling delay
	Legacy      bool          // send the older outbound event names
	Dialer      *websocket.Dialer
	Logf        func(format string, args ...any)
}

type subscription struct {
	id int
	h  Handler
}

// Conn is the single channel to the server for the whole client session.
type Conn struct {
	opts Options

	mu       sync.Mutex
	ws       *websocket.Conn
	player   string
	joined   bool
	closed   bool
	handlers map[string][]subscription
	nextSub  int

	send    chan protocol.Envelope
	inbound chan protocol.Envelope
}

// Dial opens the connection. Nothing is read until Run is called.
func Dial(ctx context.Context, opts Options) (*Conn, error) {
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		}
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 30 * time.Second
	}

	c := &Conn{
		opts:     opts,
		handlers: make(map[string][]subscription),
		send:     make(chan protocol.Envelope, sendQueue),
		inbound:  make(chan protocol.Envelope, inboundQueue),
	}

	ws, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.ws = ws

	return c, nil
}

func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	ws, resp, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}

	c.opts.Logf("CONN: Connected to %s", c.opts.URL)

	return ws, nil
}

// Inbound delivers server events, plus local connect/disconnect events, in
// arrival order. Pass each one to Dispatch from a single goroutine.
func (c *Conn) Inbound() <-chan protocol.Envelope {
	return c.inbound
}

// Subscribe registers h for event. Handlers for one event run in the order
// they subscribed.
func (c *Conn) Subscribe(event string, h Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSub++
	id := c.nextSub
	c.handlers[event] = append(c.handlers[event], subscription{id: id, h: h})

	var once sync.Once

	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			c.handlers[event] = slices.DeleteFunc(c.handlers[event], func(s subscription) bool {
				return s.id == id
			})
		})
	}
}

// Dispatch runs every handler subscribed to env.Type. A sync after a join
// confirms the identity unless it carries an error.
func (c *Conn) Dispatch(env protocol.Envelope) {
	confirms := env.Type == protocol.EventSyncState && !rejected(env)

	c.mu.Lock()
	if confirms && c.player != "" && !c.joined {
		c.joined = true
		c.opts.Logf("CONN: Identity %q confirmed", c.player)
	}
	subs := slices.Clone(c.handlers[env.Type])
	c.mu.Unlock()

	for _, s := range subs {
		s.h(env)
	}
}

func rejected(env protocol.Envelope) bool {
	var msg protocol.SyncState
	if err := env.Unmarshal(&msg); err != nil {
		return true
	}

	return msg.Error != ""
}

// Join is the identity handshake. The server confirms it with a sync; until
// then every other Emit returns ErrNotJoined.
func (c *Conn) Join(player string) error {
	c.mu.Lock()
	c.player = player
	c.joined = false
	c.mu.Unlock()

	_, err := c.enqueue(protocol.EventJoin, protocol.Join{Player: player})

	return err
}

// Player returns the identity passed to Join.
func (c *Conn) Player() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.player
}

// Joined reports whether the server has confirmed the identity.
func (c *Conn) Joined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.joined
}

// Emit queues an intent and returns the request id stamped on it.
func (c *Conn) Emit(event string, payload any) (string, error) {
	if !c.Joined() {
		return "", ErrNotJoined
	}

	return c.enqueue(event, payload)
}

func (c *Conn) enqueue(event string, payload any) (string, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return "", ErrClosed
	}

	name := event
	if c.opts.Legacy {
		name = protocol.Legacy(event)
	}

	id := uuid.NewString()

	env, err := protocol.Encode(name, id, payload)
	if err != nil {
		return "", err
	}

	select {
	case c.send <- env:
		c.opts.Logf("SEND: %s (%s)", name, id)
		return id, nil
	default:
		return "", ErrSendQueueFull
	}
}

// Run pumps frames until ctx is done, the connection is closed, or the
// socket drops and reconnecting is disabled or exhausted.
func (c *Conn) Run(ctx context.Context) error {
	defer c.Close()

	ws := c.current()

	for {
		done := make(chan struct{})
		go c.writePump(ws, done)

		err := c.readPump(ctx, ws)
		close(done)
		_ = ws.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.mu.Lock()
		c.joined = false
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return ErrClosed
		}

		c.opts.Logf("CONN: Disconnected: %v", err)
		c.drain()
		c.deliver(ctx, protocol.Envelope{Type: protocol.EventDisconnect})

		if !c.opts.Reconnect {
			return err
		}

		ws, err = c.redial(ctx)
		if err != nil {
			return err
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = ws.Close()

			return ErrClosed
		}
		c.ws = ws
		player := c.player
		c.mu.Unlock()

		if player != "" {
			if err := c.Join(player); err != nil {
				c.opts.Logf("CONN: Resume as %q failed: %v", player, err)
			}
		}

		c.deliver(ctx, protocol.Envelope{Type: protocol.EventConnect})
	}
}

func (c *Conn) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ws
}

// redial retries with a doubling delay.
func (c *Conn) redial(ctx context.Context) (*websocket.Conn, error) {
	delay := c.opts.Backoff

	for attempt := 1; c.opts.MaxAttempts == 0 || attempt <= c.opts.MaxAttempts; attempt++ {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		ws, err := c.dial(ctx)
		if err == nil {
			return ws, nil
		}

		c.opts.Logf("CONN: Reconnect attempt %d failed: %v", attempt, err)

		delay = min(delay*2, c.opts.MaxBackoff)
	}

	return nil, fmt.Errorf("gave up reconnecting to %s after %d attempts", c.opts.URL, c.opts.MaxAttempts)
}

// drain drops intents queued for a socket that is gone; the server would not
// know the identity on a new socket until the join is replayed.
func (c *Conn) drain() {
	for {
		select {
		case env := <-c.send:
			c.opts.Logf("SEND: Dropped %s (%s): disconnected", env.Type, env.ID)
		default:
			return
		}
	}
}

func (c *Conn) deliver(ctx context.Context, env protocol.Envelope) {
	select {
	case c.inbound <- env:
	case <-ctx.Done():
	}
}

func (c *Conn) readPump(ctx context.Context, ws *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() {
		_ = ws.Close()
	})
	defer stop()

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			return err
		}

		env, err := protocol.Decode(frame)
		if err != nil {
			c.opts.Logf("CONN: Skipping frame: %v", err)
			continue
		}

		c.deliver(ctx, env)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Conn) writePump(ws *websocket.Conn, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case env := <-c.send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteJSON(env); err != nil {
				c.opts.Logf("SEND: Dropped %s (%s): %v", env.Type, env.ID, err)
				_ = ws.Close()
				return
			}
		}
	}
}

// Close shuts the socket. Run returns once its read pump notices.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	return c.ws.Close()
}
