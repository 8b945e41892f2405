/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Seednode/knockbox/protocol"
	"github.com/Seednode/knockbox/session"
	"github.com/Seednode/knockbox/view"
	"github.com/pterm/pterm"
)

var errNoPlayer = errors.New("a player id is required to join")

// client is the event loop. Everything it holds is touched only from run.
type client struct {
	cfg    *Config
	conn   *session.Conn
	store  *session.Store
	board  *view.Board
	screen *screen
	status *statusBoard

	player    string
	connected bool

	redraw chan struct{}
}

func newClient(cfg *Config, conn *session.Conn, out io.Writer) *client {
	c := &client{
		cfg:       cfg,
		conn:      conn,
		store:     session.NewStore(conn),
		screen:    newScreen(out),
		status:    &statusBoard{},
		connected: true,
		redraw:    make(chan struct{}, 1),
	}

	c.store.OnNotice = c.screen.notice
	c.store.OnChange = func() {
		if c.board != nil {
			c.board.Refresh()
		}
	}

	return c
}

// requestRedraw is safe to call from any goroutine.
func (c *client) requestRedraw() {
	select {
	case c.redraw <- struct{}{}:
	default:
	}
}

func (c *client) join(player string) error {
	if player == "" {
		return errNoPlayer
	}

	if err := c.conn.Join(player); err != nil {
		return fmt.Errorf("join as %q: %w", player, err)
	}

	logf(c.cfg, "SEND: Joining as %q", player)

	c.player = player
	c.board = view.NewBoard(player, c.conn, c.store, c.requestRedraw, c.screen.notice)

	return nil
}

func (c *client) receive(env protocol.Envelope) {
	switch env.Type {
	case protocol.EventDisconnect:
		c.connected = false
		c.store.Notify(session.NoticeError, "Connection lost, reconnecting...")
	case protocol.EventConnect:
		c.connected = true
		c.store.Notify(session.NoticeInfo, "Reconnected")
	default:
		logf(c.cfg, "SYNC: %s (%s)", env.Type, humanReadableSize(int64(len(env.Data))))
	}

	c.conn.Dispatch(env)
}

func (c *client) handle(in input) error {
	if in.err != nil {
		c.store.Notify(session.NoticeError, in.err.Error())

		return nil
	}

	switch in.gesture.action {
	case actionNone:
		return nil
	case actionHelp:
		c.screen.toggleHelp()

		return nil
	}

	if c.board == nil {
		return nil
	}

	err := in.gesture.apply(c.board)
	switch {
	case err == nil:
	case errors.Is(err, errQuit):
		return err
	case errors.Is(err, session.ErrNotJoined):
		c.store.Notify(session.NoticeError, "Waiting for the server to accept "+c.player)
	default:
		c.store.Notify(session.NoticeError, err.Error())
	}

	return nil
}

func (c *client) render() {
	s := &status{
		Player:    c.player,
		Joined:    c.conn.Joined(),
		Connected: c.connected,
		DrawLock:  c.store.DrawLocked(),
		State:     c.store.Snapshot(),
	}

	var board string
	if c.board != nil {
		board = c.board.Render()
		s.Board = pterm.RemoveColorFromString(board)
	}

	c.status.publish(s)

	// The identity prompt owns the terminal until it returns.
	if c.player == "" {
		return
	}

	c.screen.draw(connectionLine(c.player, s.Connected, s.Joined), c.screen.frame(board))
}

func (c *client) close() {
	if c.board != nil {
		c.board.Close()
	}
	c.store.Close()
	_ = c.conn.Close()
}

func promptIdentity(out chan<- string) {
	player, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Enter your player id").
		WithDefaultValue("player1").
		Show()
	if err != nil {
		player = ""
	}

	out <- strings.TrimSpace(player)
}

// run owns the store, the board and the hand until ctx is done, the player
// quits, or the connection is lost for good.
func (c *client) run(ctx context.Context, stdin io.Reader) error {
	runErr := make(chan error, 1)
	go func() {
		runErr <- c.conn.Run(ctx)
	}()

	identity := make(chan string, 1)
	if c.cfg.player != "" {
		identity <- c.cfg.player
	} else {
		go promptIdentity(identity)
	}

	inputs := make(chan input)
	done := make(chan struct{})
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-runErr:
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		case player := <-identity:
			if err := c.join(player); err != nil {
				return err
			}

			go readGestures(stdin, inputs, done)
		case env := <-c.conn.Inbound():
			c.receive(env)
		case in := <-inputs:
			if err := c.handle(in); errors.Is(err, errQuit) {
				return nil
			}
		case <-c.redraw:
		}

		c.render()
	}
}

func RunClient(ctx context.Context, cfg *Config) error {
	closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	logf(cfg, "START: knockbox v%s", releaseVersion)

	if cfg.qr {
		if err := printQR(cfg, os.Stdout); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, err := session.Dial(ctx, session.Options{
		URL:         cfg.server,
		Reconnect:   cfg.reconnect,
		MaxAttempts: cfg.maxAttempts,
		MaxBackoff:  cfg.maxBackoff,
		Legacy:      cfg.legacy,
		Logf: func(format string, args ...any) {
			logf(cfg, format, args...)
		},
	})
	if err != nil {
		return err
	}

	c := newClient(cfg, conn, os.Stdout)
	defer c.close()

	if cfg.statusPort != 0 {
		go func() {
			if err := ServeStatus(ctx, cfg, c.status); err != nil {
				logf(cfg, "ERROR: status server: %v", err)
			}
		}()
	}

	return c.run(ctx, os.Stdin)
}
