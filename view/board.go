/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package view

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Seednode/knockbox/cards"
	"github.com/Seednode/knockbox/protocol"
	"github.com/Seednode/knockbox/session"
	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"
)

// Board is the table seen by one player: piles, scores, controls and the
// player's hand. It reads the store and sends intents; the only state it
// changes itself is the draw lock and the optimistic resets.
type Board struct {
	self  string
	conn  Emitter
	store *session.Store
	hand  *Hand
}

func NewBoard(self string, conn Emitter, store *session.Store, redraw func(), notify func(session.Notice)) *Board {
	b := &Board{
		self:  self,
		conn:  conn,
		store: store,
		hand:  NewHand(self, conn, redraw, notify),
	}
	b.Refresh()

	return b
}

func (b *Board) Hand() *Hand {
	return b.hand
}

// Refresh pulls a changed hand out of the store.
func (b *Board) Refresh() {
	s := b.store.Snapshot()
	b.hand.Sync(s.Hand, b.store.HandRevision())
}

func (b *Board) Affordances() Affordances {
	return Derive(b.store.Snapshot(), b.self)
}

func (b *Board) draw(source protocol.Source, allowed bool) error {
	if !allowed {
		return ErrUnavailable
	}
	if b.store.DrawLocked() {
		return ErrDrawInFlight
	}

	b.store.SetDrawLock(true)
	if _, err := b.conn.Emit(protocol.EventDrawCard, protocol.DrawCard{Player: b.self, Source: source}); err != nil {
		b.store.SetDrawLock(false)
		return err
	}

	return nil
}

func (b *Board) DrawFromStock() error {
	return b.draw(protocol.SourceStock, b.Affordances().Draw)
}

func (b *Board) TakeDiscard() error {
	return b.draw(protocol.SourceDiscard, b.Affordances().TakeDiscard)
}

func (b *Board) Knock() error {
	if !b.Affordances().Knock {
		return ErrUnavailable
	}

	_, err := b.conn.Emit(protocol.EventKnock, protocol.Knock{Player: b.self})

	return err
}

// Discard throws away the card at a displayed position.
func (b *Board) Discard(index int) error {
	return b.hand.Click(index, b.Affordances())
}

func (b *Board) NextRound() error {
	if !b.Affordances().NextRound {
		return ErrUnavailable
	}
	if _, err := b.conn.Emit(protocol.EventNewRound, protocol.NewRound{}); err != nil {
		return err
	}

	b.store.BeginNewRound()
	b.Refresh()

	return nil
}

func (b *Board) NewGame() error {
	if _, err := b.conn.Emit(protocol.EventNewGame, protocol.NewGame{}); err != nil {
		return err
	}

	b.store.BeginNewGame()
	b.Refresh()

	return nil
}

// Close stops the hand's timers.
func (b *Board) Close() {
	b.hand.Close()
}

// Render draws the whole table.
func (b *Board) Render() string {
	s := b.store.Snapshot()
	a := Derive(s, b.self)

	var sections []string

	sections = append(sections, pterm.DefaultBox.WithTitle("Scores").Sprint(scoreLine(s.Scores)))
	sections = append(sections, piles(s))

	turn := "Current Turn: " + s.Turn
	if s.OpponentCount > 0 {
		turn += fmt.Sprintf("    Opponent holds %d cards", s.OpponentCount)
	}
	sections = append(sections, pterm.Bold.Sprint(turn))

	sections = append(sections, actionLine(a, b.store.DrawLocked()))
	sections = append(sections, b.renderHand())

	if s.Message != "" {
		sections = append(sections, pterm.FgCyan.Sprint(s.Message))
	}

	controls := "[new] New Game"
	if a.NextRound {
		controls = "[n] Next Round    " + controls
	}
	sections = append(sections, controls)

	return strings.Join(sections, "\n")
}

func scoreLine(scores map[string]int) string {
	if len(scores) == 0 {
		return "No scores yet"
	}

	players := make([]string, 0, len(scores))
	for p := range scores {
		players = append(players, p)
	}
	slices.Sort(players)

	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = fmt.Sprintf("%s: %d", p, scores[p])
	}

	return strings.Join(parts, " | ")
}

func piles(s session.State) string {
	stock := cardBack()
	if s.DeckSize == 0 {
		stock = emptySlot("Empty")
	}

	discard := emptySlot("")
	if s.DiscardTop != "" {
		discard = cardLines(cards.Decode(s.DiscardTop), false)
	}

	captions := runewidth.FillRight(fmt.Sprintf("(%d)", s.DeckSize), cardWidth) + "  " + "Discard"

	return sideBySide([][]string{stock, discard}, nil, 2) + captions
}

func actionLine(a Affordances, drawing bool) string {
	if a.DiscardMode {
		return pterm.FgYellow.Sprint(a.Prompt)
	}

	line := "[s] Draw from Stock    [t] Take Discard    [k] Knock"
	if a.StockExhausted {
		line = "[s] Draw from Stock (empty)    [t] Take Discard    [k] Knock"
	}
	if drawing {
		line += "    (waiting for card...)"
	}

	return line
}

// fanDrop turns the fan's vertical offset into terminal rows.
func fanDrop(t cards.Transform) int {
	return int(math.Round(-t.YOffset / cards.FanDrop / 2))
}

func (b *Board) renderHand() string {
	title := b.self
	if title == "" {
		title = "Your hand"
	}

	views := b.hand.Cards()
	if len(views) == 0 {
		return pterm.DefaultBox.WithTitle(title).Sprint("No cards in hand.")
	}

	blocks := make([][]string, len(views))
	drops := make([]int, len(views))
	labels := make([]string, len(views))

	for i, v := range views {
		blocks[i] = cardLines(v.Visual, v.Entering)
		drops[i] = fanDrop(v.Transform)

		label := strconv.Itoa(i + 1)
		if v.Grabbed {
			label = "^" + label
		}
		labels[i] = runewidth.FillRight(strings.Repeat(" ", (cardWidth-len(label))/2)+label, cardWidth)
	}

	return pterm.DefaultBox.WithTitle(title).Sprint(sideBySide(blocks, drops, 1) + strings.Join(labels, " "))
}
