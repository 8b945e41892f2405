package session

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/Seednode/knockbox/cards"
	"github.com/Seednode/knockbox/protocol"
)

// fakeSubscriber records handlers so tests can feed envelopes directly.
type fakeSubscriber struct {
	handlers map[string][]Handler
	removed  int
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{handlers: make(map[string][]Handler)}
}

func (f *fakeSubscriber) Subscribe(event string, h Handler) func() {
	f.handlers[event] = append(f.handlers[event], h)

	return func() { f.removed++ }
}

func (f *fakeSubscriber) send(t *testing.T, event string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, h := range f.handlers[event] {
		h(protocol.Envelope{Type: event, Data: data})
	}
}

func sampleSync() protocol.SyncState {
	return protocol.SyncState{
		DeckSize:      31,
		Turn:          "player1",
		Pending:       "",
		Hand:          []string{"Hearts A", "Clubs 7", "Spades K"},
		Scores:        map[string]int{"player1": 12, "player2": 4},
		DiscardString: "Diamonds 9",
		Message:       "Joined as player1",
		OpponentCount: 10,
	}
}

func TestApplySyncReplacesState(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.ApplySync(sampleSync())

	got := s.Snapshot()
	want := State{
		DeckSize:      31,
		Turn:          "player1",
		Hand:          []cards.Token{"Hearts A", "Clubs 7", "Spades K"},
		Scores:        map[string]int{"player1": 12, "player2": 4},
		DiscardTop:    "Diamonds 9",
		Message:       "Joined as player1",
		OpponentCount: 10,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("state = %+v\nwant  %+v", got, want)
	}
}

func TestApplySyncIsIdempotent(t *testing.T) {
	s := NewStore(newFakeSubscriber())

	s.ApplySync(sampleSync())
	first := s.Snapshot()

	s.ApplySync(sampleSync())
	second := s.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second application changed state:\n%+v\n%+v", first, second)
	}
}

func TestApplySyncKeepsHandAndScoresWhenAbsent(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.ApplySync(sampleSync())
	rev := s.HandRevision()

	s.ApplySync(protocol.SyncState{DeckSize: 30, Turn: "player2", Pending: "player2"})

	got := s.Snapshot()
	if len(got.Hand) != 3 || got.Scores["player1"] != 12 {
		t.Errorf("hand/scores should survive an omitting sync: %+v", got)
	}
	if got.DiscardTop != "" || got.Message != "" || got.OpponentCount != 0 {
		t.Errorf("other fields should be replaced unconditionally: %+v", got)
	}
	if got.Turn != "player2" || got.Pending != "player2" || got.DeckSize != 30 {
		t.Errorf("turn/pending/deck not replaced: %+v", got)
	}
	if s.HandRevision() != rev {
		t.Error("hand revision should not change when the hand is absent")
	}
}

func TestApplySyncEmptyHandReplaces(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.ApplySync(sampleSync())

	msg := sampleSync()
	msg.Hand = []string{}
	s.ApplySync(msg)

	if got := s.Snapshot().Hand; len(got) != 0 {
		t.Errorf("hand = %v, want empty", got)
	}
}

func TestApplySyncClearsDrawLock(t *testing.T) {
	cases := []struct {
		name string
		msg  protocol.SyncState
	}{
		{"draw succeeded", protocol.SyncState{DeckSize: 30, Pending: "player1", Hand: make([]string, 11)}},
		{"unrelated sync", protocol.SyncState{DeckSize: 31, Turn: "player2"}},
		{"draw refused", protocol.SyncState{DeckSize: 31, Message: "Not your turn"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(newFakeSubscriber())
			s.SetDrawLock(true)
			s.ApplySync(tc.msg)
			if s.DrawLocked() {
				t.Error("draw lock should be cleared by any sync")
			}
		})
	}
}

func TestApplySyncErrorLeavesState(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.ApplySync(sampleSync())
	s.SetDrawLock(true)

	var notices []Notice
	s.OnNotice = func(n Notice) { notices = append(notices, n) }

	before := s.Snapshot()
	s.ApplySync(protocol.SyncState{Error: "Invalid player"})

	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("error sync changed state")
	}
	if !s.DrawLocked() {
		t.Error("error sync should not touch the draw lock")
	}
	if len(notices) != 1 || notices[0].Kind != NoticeError || notices[0].Text != "Invalid player" {
		t.Errorf("notices = %+v", notices)
	}
}

func TestNewRoundStartedMessageClearsFlags(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.ApplyGameOver(protocol.GameOver{Winner: "player2", Reason: "gin"})

	msg := sampleSync()
	msg.Message = "New round started"
	s.ApplySync(msg)

	got := s.Snapshot()
	if got.Message != "" || got.GameOver || got.RoundFinished {
		t.Errorf("state = %+v, want cleared message and flags", got)
	}
}

func TestRoundMessageClearsRoundFinished(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.BeginNewRound()
	if !s.Snapshot().RoundFinished {
		t.Fatal("BeginNewRound should set RoundFinished")
	}

	msg := sampleSync()
	msg.Message = "Round 3 dealt"
	s.ApplySync(msg)

	if s.Snapshot().RoundFinished {
		t.Error("a round message should clear RoundFinished")
	}
}

func TestApplyRoundOver(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.ApplyRoundOver(protocol.RoundOver{Winner: "player1", Reason: "knock", Points: 14})

	got := s.Snapshot()
	if got.Message != "player1 won this round! Reason: knock, Points: 14" {
		t.Errorf("message = %q", got.Message)
	}
	if got.GameOver || got.RoundFinished {
		t.Errorf("flags = %v/%v, want false/false", got.GameOver, got.RoundFinished)
	}
}

func TestApplyGameOver(t *testing.T) {
	score := 104
	points := 25

	s := NewStore(newFakeSubscriber())
	s.ApplyGameOver(protocol.GameOver{Winner: "player2", Score: &score})
	if got := s.Snapshot(); got.Message != "player2 reached 100! Final Score: 104" || !got.GameOver || !got.RoundFinished {
		t.Errorf("state = %+v", got)
	}

	s.ApplyGameOver(protocol.GameOver{Winner: "player1", Reason: "gin", Points: &points})
	if got := s.Snapshot().Message; got != "player1 won! Reason: gin, Points: 25" {
		t.Errorf("message = %q", got)
	}
}

func TestActionErrorKeepsDrawLock(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.ApplySync(sampleSync())
	s.SetDrawLock(true)

	var notices []Notice
	s.OnNotice = func(n Notice) { notices = append(notices, n) }
	before := s.Snapshot()

	s.ApplyActionError(protocol.ActionError{Error: "Deadwood too high to knock"})

	if !s.DrawLocked() {
		t.Error("action error should leave the draw lock")
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("action error changed state")
	}
	if len(notices) != 1 || notices[0].Kind != NoticeError {
		t.Errorf("notices = %+v", notices)
	}
}

func TestBeginNewGame(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.ApplySync(sampleSync())
	rev := s.HandRevision()

	s.BeginNewGame()

	got := s.Snapshot()
	if len(got.Hand) != 0 || got.Message != "" || got.GameOver || got.RoundFinished {
		t.Errorf("state = %+v", got)
	}
	if got.Scores["player1"] != 12 {
		t.Error("scores stay until the server says otherwise")
	}
	if s.HandRevision() == rev {
		t.Error("reset should bump the hand revision")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore(newFakeSubscriber())
	s.ApplySync(sampleSync())

	snap := s.Snapshot()
	snap.Hand[0] = "Joker"
	snap.Scores["player1"] = 99

	got := s.Snapshot()
	if got.Hand[0] != "Hearts A" || got.Scores["player1"] != 12 {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestStoreHandlesInboundEvents(t *testing.T) {
	sub := newFakeSubscriber()
	s := NewStore(sub)

	changes := 0
	s.OnChange = func() { changes++ }

	sub.send(t, protocol.EventSyncState, sampleSync())
	sub.send(t, protocol.EventRoundOver, protocol.RoundOver{Winner: "player2", Reason: "gin", Points: 31})

	if changes != 2 {
		t.Errorf("changes = %d, want 2", changes)
	}
	if got := s.Snapshot(); got.DeckSize != 31 || got.Message != "player2 won this round! Reason: gin, Points: 31" {
		t.Errorf("state = %+v", got)
	}

	s.Close()
	if sub.removed != 4 {
		t.Errorf("Close removed %d subscriptions, want 4", sub.removed)
	}
}

func TestStoreReportsUndecodableEvents(t *testing.T) {
	sub := newFakeSubscriber()
	s := NewStore(sub)

	var notices []Notice
	s.OnNotice = func(n Notice) { notices = append(notices, n) }

	for _, h := range sub.handlers[protocol.EventSyncState] {
		h(protocol.Envelope{Type: protocol.EventSyncState, Data: json.RawMessage(`{"deck_size":"many"}`)})
	}

	if len(notices) != 1 || notices[0].Kind != NoticeError {
		t.Errorf("notices = %+v", notices)
	}
	if s.Snapshot().DeckSize != 0 {
		t.Error("undecodable sync should not change state")
	}
}
