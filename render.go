/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Seednode/knockbox/session"
	"github.com/pterm/pterm"
)

const (
	clearScreen = "\033[H\033[2J"
	keepNotices = 4
)

// screen redraws the whole terminal on every change.
type screen struct {
	out     io.Writer
	notices []session.Notice
	help    bool
}

func newScreen(out io.Writer) *screen {
	return &screen{out: out}
}

func (s *screen) notice(n session.Notice) {
	s.notices = append(s.notices, n)
	if len(s.notices) > keepNotices {
		s.notices = s.notices[len(s.notices)-keepNotices:]
	}
}

func (s *screen) toggleHelp() {
	s.help = !s.help
}

func noticeLine(n session.Notice) string {
	switch n.Kind {
	case session.NoticeError:
		return pterm.Error.Sprint(n.Text)
	case session.NoticeCorrection:
		return pterm.Warning.Sprint(n.Text)
	default:
		return pterm.Info.Sprint(n.Text)
	}
}

func connectionLine(player string, connected, joined bool) string {
	switch {
	case !connected:
		return pterm.FgRed.Sprint("Disconnected, reconnecting...")
	case player == "":
		return pterm.FgDarkGray.Sprint("Connected, choose a player id to join")
	case !joined:
		return pterm.FgDarkGray.Sprintf("Joining as %s...", player)
	default:
		return pterm.FgGreen.Sprintf("Playing as %s", player)
	}
}

// frame builds everything below the connection line.
func (s *screen) frame(board string) string {
	var b strings.Builder

	if board != "" {
		b.WriteString(board)
		b.WriteString("\n")
	}

	if s.help {
		b.WriteString(pterm.DefaultBox.WithTitle("Commands").Sprint(helpText))
		b.WriteString("\n")
	}

	for _, n := range s.notices {
		b.WriteString(noticeLine(n))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *screen) draw(header, body string) {
	fmt.Fprint(s.out, clearScreen)
	fmt.Fprintln(s.out, pterm.DefaultHeader.Sprint("knockbox"))
	fmt.Fprintln(s.out, header)
	fmt.Fprint(s.out, body)
	fmt.Fprint(s.out, "> ")
}
