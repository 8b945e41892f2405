/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Seednode/knockbox/cards"
	"github.com/Seednode/knockbox/protocol"
)

// State is the client's mirror of the server's game, from one player's
// point of view.
type State struct {
	DeckSize      int            `json:"deck_size"`
	Turn          string         `json:"turn"`
	Pending       string         `json:"pending"` // who owes a discard, "" for nobody
	Hand          []cards.Token  `json:"hand"`
	Scores        map[string]int `json:"scores"`
	DiscardTop    cards.Token    `json:"discard_top"`
	Message       string         `json:"message"`
	RoundFinished bool           `json:"round_finished"`
	GameOver      bool           `json:"game_over"`
	OpponentCount int            `json:"opponent_count"`
}

func (s State) clone() State {
	s.Hand = slices.Clone(s.Hand)
	s.Scores = maps.Clone(s.Scores)

	return s
}

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
	NoticeCorrection
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeError:
		return "error"
	case NoticeCorrection:
		return "correction"
	default:
		return "info"
	}
}

// Notice is something to show the user once; it is not part of State.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Store owns State. It is not safe for concurrent use: every method must be
// called from the goroutine that dispatches inbound events.
type Store struct {
	state    State
	drawLock bool
	handRev  uint64

	unsubscribe []func()

	// OnChange runs after every state change; OnNotice for every notice.
	OnChange func()
	OnNotice func(Notice)
}

// NewStore subscribes a store with empty state to the inbound events.
func NewStore(sub Subscriber) *Store {
	s := &Store{}

	s.unsubscribe = []func(){
		sub.Subscribe(protocol.EventSyncState, func(env protocol.Envelope) {
			var msg protocol.SyncState
			if !s.decode(env, &msg) {
				return
			}
			s.ApplySync(msg)
		}),
		sub.Subscribe(protocol.EventRoundOver, func(env protocol.Envelope) {
			var msg protocol.RoundOver
			if !s.decode(env, &msg) {
				return
			}
			s.ApplyRoundOver(msg)
		}),
		sub.Subscribe(protocol.EventGameOver, func(env protocol.Envelope) {
			var msg protocol.GameOver
			if !s.decode(env, &msg) {
				return
			}
			s.ApplyGameOver(msg)
		}),
		sub.Subscribe(protocol.EventActionError, func(env protocol.Envelope) {
			var msg protocol.ActionError
			if !s.decode(env, &msg) {
				return
			}
			s.ApplyActionError(msg)
		}),
	}

	return s
}

// Close stops listening for inbound events.
func (s *Store) Close() {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.unsubscribe = nil
}

func (s *Store) decode(env protocol.Envelope, v any) bool {
	if err := env.Unmarshal(v); err != nil {
		s.notify(NoticeError, err.Error())
		return false
	}

	return true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	return s.state.clone()
}

// HandRevision changes every time the hand is replaced, by the server or by
// an optimistic reset.
func (s *Store) HandRevision() uint64 {
	return s.handRev
}

// DrawLocked reports whether a draw request is in flight.
func (s *Store) DrawLocked() bool {
	return s.drawLock
}

// SetDrawLock guards against sending a second draw before the server
// answers. Any sync clears it, whether or not it answers the draw.
func (s *Store) SetDrawLock(locked bool) {
	s.drawLock = locked
}

// ApplySync replaces the state with the server's snapshot. A sync carrying
// an error changes nothing and is reported as a notice.
func (s *Store) ApplySync(msg protocol.SyncState) {
	if msg.Error != "" {
		s.notify(NoticeError, msg.Error)
		return
	}

	next := State{
		DeckSize:      msg.DeckSize,
		Turn:          msg.Turn,
		Pending:       msg.Pending,
		Hand:          s.state.Hand,
		Scores:        s.state.Scores,
		DiscardTop:    cards.Token(msg.DiscardString),
		Message:       msg.Message,
		RoundFinished: s.state.RoundFinished,
		GameOver:      s.state.GameOver,
		OpponentCount: msg.OpponentCount,
	}

	if msg.Hand != nil {
		next.Hand = make([]cards.Token, len(msg.Hand))
		for i, t := range msg.Hand {
			next.Hand[i] = cards.Token(t)
		}
		s.handRev++
	}
	if msg.Scores != nil {
		next.Scores = maps.Clone(msg.Scores)
	}

	lower := strings.ToLower(msg.Message)
	switch {
	case strings.Contains(lower, "new round started"):
		next.Message = ""
		next.RoundFinished = false
		next.GameOver = false
	case strings.Contains(lower, "round"):
		next.RoundFinished = false
	}

	s.state = next
	// Any sync releases the lock, even one that does not answer the draw.
	s.drawLock = false
	s.changed()
}

// ApplyRoundOver reports the round result. The game goes on once someone
// asks for the next round.
func (s *Store) ApplyRoundOver(msg protocol.RoundOver) {
	s.state.Message = fmt.Sprintf("%s won this round! Reason: %s, Points: %d", msg.Winner, msg.Reason, msg.Points)
	s.state.GameOver = false
	s.state.RoundFinished = false
	s.changed()
}

// ApplyGameOver reports the final result. Only a new game leaves this state.
func (s *Store) ApplyGameOver(msg protocol.GameOver) {
	if msg.Score != nil {
		s.state.Message = fmt.Sprintf("%s reached 100! Final Score: %d", msg.Winner, *msg.Score)
	} else {
		points := 0
		if msg.Points != nil {
			points = *msg.Points
		}
		s.state.Message = fmt.Sprintf("%s won! Reason: %s, Points: %d", msg.Winner, msg.Reason, points)
	}
	s.state.GameOver = true
	s.state.RoundFinished = true
	s.changed()
}

// ApplyActionError reports a rejected action. The draw lock stays for the
// next sync to clear.
func (s *Store) ApplyActionError(msg protocol.ActionError) {
	s.notify(NoticeError, msg.Error)
}

// BeginNewRound clears the table while the server deals the next round.
func (s *Store) BeginNewRound() {
	s.reset(true)
}

// BeginNewGame clears the table while the server starts over.
func (s *Store) BeginNewGame() {
	s.reset(false)
}

func (s *Store) reset(roundFinished bool) {
	s.state.Hand = []cards.Token{}
	s.state.Message = ""
	s.state.GameOver = false
	s.state.RoundFinished = roundFinished
	s.handRev++
	s.changed()
}

// Notify raises a notice that did not come from the server, e.g. a lost
// connection.
func (s *Store) Notify(kind NoticeKind, text string) {
	s.notify(kind, text)
}

func (s *Store) notify(kind NoticeKind, text string) {
	if s.OnNotice != nil {
		s.OnNotice(Notice{Kind: kind, Text: text})
	}
}

func (s *Store) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
