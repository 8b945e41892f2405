/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cards

// Move returns a copy of s with the element at from reinserted at to. The
// input slice is not modified.
func Move[T any](s []T, from, to int) []T {
	out := make([]T, 0, len(s))
	out = append(out, s[:from]...)
	out = append(out, s[from+1:]...)

	moved := s[from]
	out = append(out, moved)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = moved

	return out
}

// Reorder is the intent produced by a completed drag.
type Reorder struct {
	From int
	To   int
}

// Drag tracks one pointer-down-to-drop gesture. The zero value is idle.
type Drag struct {
	dragging bool
	from     int
}

// Start begins a gesture at from, replacing any gesture in progress.
func (d *Drag) Start(from int) {
	d.dragging = true
	d.from = from
}

// Cancel abandons the gesture.
func (d *Drag) Cancel() {
	d.dragging = false
	d.from = 0
}

// From reports the grabbed index, if a gesture is in progress.
func (d *Drag) From() (int, bool) {
	return d.from, d.dragging
}

// Drop ends the gesture at to. When the card actually moves it returns the
// reordered hand and the intent to report; otherwise it returns the hand
// unchanged and false. Either way the controller is idle afterwards.
func (d *Drag) Drop(hand []Token, to int) ([]Token, Reorder, bool) {
	from, dragging := d.From()
	d.Cancel()

	if !dragging || from == to {
		return hand, Reorder{}, false
	}
	if from < 0 || from >= len(hand) || to < 0 || to >= len(hand) {
		return hand, Reorder{}, false
	}

	return Move(hand, from, to), Reorder{From: from, To: to}, true
}
