/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Seednode/knockbox/view"
)

type action int

const (
	actionNone action = iota
	actionDrawStock
	actionTakeDiscard
	actionDiscard
	actionKnock
	actionGrab
	actionDrop
	actionCancel
	actionMove
	actionNextRound
	actionNewGame
	actionHelp
	actionQuit
)

var errQuit = errors.New("quit")

const helpText = `s, stock          draw from the stock pile
t, take           take the top discard
d N, discard N    discard card N
k, knock          knock
g N, grab N       pick up card N to move it
p N, drop N       drop the grabbed card at position N
c, cancel         put the grabbed card back
m A B, move A B   move card A to position B
n, next           start the next round
new               start a new game
h, help           show this help
q, quit           leave the table`

type verb struct {
	action action
	args   int
}

var verbs = map[string]verb{
	"s":       {actionDrawStock, 0},
	"stock":   {actionDrawStock, 0},
	"t":       {actionTakeDiscard, 0},
	"take":    {actionTakeDiscard, 0},
	"d":       {actionDiscard, 1},
	"discard": {actionDiscard, 1},
	"k":       {actionKnock, 0},
	"knock":   {actionKnock, 0},
	"g":       {actionGrab, 1},
	"grab":    {actionGrab, 1},
	"p":       {actionDrop, 1},
	"drop":    {actionDrop, 1},
	"c":       {actionCancel, 0},
	"cancel":  {actionCancel, 0},
	"m":       {actionMove, 2},
	"move":    {actionMove, 2},
	"n":       {actionNextRound, 0},
	"next":    {actionNextRound, 0},
	"new":     {actionNewGame, 0},
	"h":       {actionHelp, 0},
	"help":    {actionHelp, 0},
	"?":       {actionHelp, 0},
	"q":       {actionQuit, 0},
	"quit":    {actionQuit, 0},
	"exit":    {actionQuit, 0},
}

// gesture is one parsed line of input. Positions are zero-based.
type gesture struct {
	action    action
	positions []int
}

// parseGesture reads a line such as "d 3" or "move 1 5". Positions are typed
// one-based.
func parseGesture(line string) (gesture, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return gesture{action: actionNone}, nil
	}

	v, ok := verbs[fields[0]]
	if !ok {
		return gesture{}, fmt.Errorf("unknown command %q (type h for help)", fields[0])
	}

	if len(fields)-1 != v.args {
		return gesture{}, fmt.Errorf("%s takes %d card position(s)", fields[0], v.args)
	}

	g := gesture{action: v.action}
	for _, f := range fields[1:] {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return gesture{}, fmt.Errorf("invalid card position %q", f)
		}
		g.positions = append(g.positions, n-1)
	}

	return g, nil
}

// apply performs the gesture against the board. errQuit asks the loop to
// stop.
func (g gesture) apply(b *view.Board) error {
	switch g.action {
	case actionDrawStock:
		return b.DrawFromStock()
	case actionTakeDiscard:
		return b.TakeDiscard()
	case actionDiscard:
		return b.Discard(g.positions[0])
	case actionKnock:
		return b.Knock()
	case actionGrab:
		return b.Hand().Grab(g.positions[0])
	case actionDrop:
		_, err := b.Hand().Drop(g.positions[0])
		return err
	case actionCancel:
		b.Hand().Cancel()
		return nil
	case actionMove:
		_, err := b.Hand().Move(g.positions[0], g.positions[1])
		return err
	case actionNextRound:
		return b.NextRound()
	case actionNewGame:
		return b.NewGame()
	case actionQuit:
		return errQuit
	}

	return nil
}

// input is a line read from the terminal, or the error that ended reading.
type input struct {
	gesture gesture
	err     error
}

// readGestures parses r line by line until EOF, which reads as quit.
func readGestures(r io.Reader, out chan<- input, done <-chan struct{}) {
	scanner := bufio.NewScanner(r)

	send := func(in input) bool {
		select {
		case out <- in:
			return true
		case <-done:
			return false
		}
	}

	for scanner.Scan() {
		g, err := parseGesture(scanner.Text())
		if !send(input{gesture: g, err: err}) {
			return
		}
	}

	send(input{gesture: gesture{action: actionQuit}})
}
