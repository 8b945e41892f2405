/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package view

import (
	"errors"
	"slices"
	"time"

	"github.com/Seednode/knockbox/cards"
	"github.com/Seednode/knockbox/protocol"
	"github.com/Seednode/knockbox/session"
)

var (
	ErrUnavailable  = errors.New("not available right now")
	ErrNoSuchCard   = errors.New("no card at that position")
	ErrDrawInFlight = errors.New("already waiting for a card")
)

// Emitter sends intents to the server.
type Emitter interface {
	Emit(event string, payload any) (id string, err error)
}

// CardView is one card of the hand as drawn.
type CardView struct {
	Token     cards.Token
	Visual    cards.VisualCard
	Transform cards.Transform
	Entering  bool
	Grabbed   bool
}

// pendingReorder remembers the order we showed after a drag until the server
// sends a hand of its own.
type pendingReorder struct {
	id       string
	expected []cards.Token
}

// Hand is the player's own hand as displayed. Its order may run ahead of the
// store after a drag; the next hand from the server wins.
type Hand struct {
	self    string
	emitter Emitter

	display   []cards.Token
	rev       uint64
	drag      cards.Drag
	pending   *pendingReorder
	entrances []*entrance
	entryTime time.Duration

	redraw func()
	notify func(session.Notice)
}

// NewHand returns an empty hand. redraw is called from a timer goroutine when
// a highlight ends; notify on the caller's goroutine.
func NewHand(self string, emitter Emitter, redraw func(), notify func(session.Notice)) *Hand {
	return &Hand{
		self:      self,
		emitter:   emitter,
		entryTime: EntranceDuration,
		redraw:    redraw,
		notify:    notify,
	}
}

// Sync adopts the store's hand whenever its revision moves.
func (h *Hand) Sync(hand []cards.Token, rev uint64) {
	if rev == h.rev && h.display != nil {
		return
	}
	h.rev = rev

	if h.pending != nil {
		if !sameOrder(h.pending.expected, hand) {
			h.raise(session.Notice{
				Kind: session.NoticeCorrection,
				Text: "The server kept a different card order; your hand was restored.",
			})
		}
		h.pending = nil
	}

	h.display = slices.Clone(hand)
	if h.display == nil {
		h.display = []cards.Token{}
	}

	if from, dragging := h.drag.From(); dragging && from >= len(h.display) {
		h.drag.Cancel()
	}

	h.resize(len(h.display))
}

// resize keeps one entrance timer per position. New positions start
// highlighted; vanished positions have their timers cancelled.
func (h *Hand) resize(n int) {
	for i := n; i < len(h.entrances); i++ {
		h.entrances[i].stop()
	}
	if n < len(h.entrances) {
		h.entrances = h.entrances[:n]
	}

	for len(h.entrances) < n {
		h.entrances = append(h.entrances, newEntrance(h.entryTime, h.redraw))
	}
}

// sameOrder reports whether the cards both hands share appear in the same
// relative order. A server that also added or removed cards still agrees.
func sameOrder(expected, got []cards.Token) bool {
	inGot := make(map[cards.Token]bool, len(got))
	for _, t := range got {
		inGot[t] = true
	}
	inExpected := make(map[cards.Token]bool, len(expected))
	for _, t := range expected {
		inExpected[t] = true
	}

	a := slices.DeleteFunc(slices.Clone(expected), func(t cards.Token) bool { return !inGot[t] })
	b := slices.DeleteFunc(slices.Clone(got), func(t cards.Token) bool { return !inExpected[t] })

	return slices.Equal(a, b)
}

func (h *Hand) raise(n session.Notice) {
	if h.notify != nil {
		h.notify(n)
	}
}

// Len is the number of displayed cards.
func (h *Hand) Len() int {
	return len(h.display)
}

// Tokens returns the displayed order.
func (h *Hand) Tokens() []cards.Token {
	return slices.Clone(h.display)
}

// Cards returns what to draw for each position.
func (h *Hand) Cards() []CardView {
	grabbed, dragging := h.drag.From()
	fan := cards.Fan(len(h.display))

	out := make([]CardView, len(h.display))
	for i, t := range h.display {
		out[i] = CardView{
			Token:     t,
			Visual:    cards.Decode(t),
			Transform: fan[i],
			Entering:  i < len(h.entrances) && h.entrances[i].entering(),
			Grabbed:   dragging && grabbed == i,
		}
	}

	return out
}

// Grab starts dragging the card at index.
func (h *Hand) Grab(index int) error {
	if index < 0 || index >= len(h.display) {
		return ErrNoSuchCard
	}
	h.drag.Start(index)

	return nil
}

// Cancel abandons a drag.
func (h *Hand) Cancel() {
	h.drag.Cancel()
}

// Dragging reports the grabbed position.
func (h *Hand) Dragging() (int, bool) {
	return h.drag.From()
}

// Drop ends a drag at index. Once the server has been told, the new order
// shows immediately; moved is false when nothing changed or the send failed.
func (h *Hand) Drop(index int) (moved bool, err error) {
	if _, dragging := h.drag.From(); dragging && (index < 0 || index >= len(h.display)) {
		h.drag.Cancel()
		return false, ErrNoSuchCard
	}

	next, intent, ok := h.drag.Drop(h.display, index)
	if !ok {
		return false, nil
	}

	// The shown order must match what the server knows, so an unsent
	// reorder is not shown at all.
	id, err := h.emitter.Emit(protocol.EventReorderHand, protocol.ReorderHand{
		Player:    h.self,
		FromIndex: intent.From,
		ToIndex:   intent.To,
	})
	if err != nil {
		return false, err
	}

	h.display = next
	h.pending = &pendingReorder{id: id, expected: slices.Clone(next)}

	return true, nil
}

// Move is a whole drag in one step.
func (h *Hand) Move(from, to int) (bool, error) {
	if err := h.Grab(from); err != nil {
		return false, err
	}

	return h.Drop(to)
}

// PendingReorder returns the request id of a reorder the server has not yet
// answered with a hand.
func (h *Hand) PendingReorder() (string, bool) {
	if h.pending == nil {
		return "", false
	}

	return h.pending.id, true
}

// Click discards the card at index when the affordances allow it. The index
// refers to the displayed order.
func (h *Hand) Click(index int, a Affordances) error {
	if !a.CardClick {
		return ErrUnavailable
	}
	if index < 0 || index >= len(h.display) {
		return ErrNoSuchCard
	}

	_, err := h.emitter.Emit(protocol.EventDiscardCard, protocol.DiscardCard{
		Player:    h.self,
		CardIndex: index,
	})

	return err
}

// Close cancels every entrance timer.
func (h *Hand) Close() {
	h.resize(0)
}
