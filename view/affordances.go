/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package view derives what the player can do from the mirrored state and
// draws the table as text.
package view

import (
	"strings"

	"github.com/Seednode/knockbox/session"
)

// HandWithDrawnCard is the hand size of a player who has drawn and still owes
// a discard.
const HandWithDrawnCard = 11

const discardPrompt = "Please click on a card in your hand to discard."

// Affordances says which controls are live. It is recomputed from a snapshot
// on every render and never stored.
type Affordances struct {
	DiscardMode    bool
	Draw           bool
	TakeDiscard    bool
	Knock          bool
	CardClick      bool
	NextRound      bool
	NewGame        bool
	StockExhausted bool
	Prompt         string
}

// Derive computes the affordances for player self.
func Derive(s session.State, self string) Affordances {
	a := Affordances{
		NewGame:        true,
		StockExhausted: s.DeckSize == 0,
		NextRound:      roundConcluded(s.Message) && !s.GameOver && !s.RoundFinished,
	}

	// Some descriptions of this rule say "not 11"; holding the drawn eleventh
	// card is what owes a discard.
	if self != "" && s.Pending == self && len(s.Hand) == HandWithDrawnCard {
		a.DiscardMode = true
		a.CardClick = true
		a.Prompt = discardPrompt

		return a
	}

	// The stock stays offered when empty; the server decides.
	a.Draw = true
	a.TakeDiscard = true
	a.Knock = true

	return a
}

func roundConcluded(message string) bool {
	return strings.Contains(strings.ToLower(message), "round")
}
