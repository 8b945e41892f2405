/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package protocol

// Messages sent to the server
type Join struct {
	Player string `json:"player"`
}

type DrawCard struct {
	Player string `json:"player"`
	Source Source `json:"source"` // "stock" or "discard"
}

type DiscardCard struct {
	Player    string `json:"player"`
	CardIndex int    `json:"cardIndex"`
}

type Knock struct {
	Player string `json:"player"`
}

// NewRound and NewGame carry no fields; they still encode as {} so servers
// that expect an object are satisfied.
type NewRound struct{}

type NewGame struct{}

type ReorderHand struct {
	Player    string `json:"player"`
	FromIndex int    `json:"fromIndex"`
	ToIndex   int    `json:"toIndex"`
}

// Messages coming from the server

// SyncState is a full snapshot for one player. Hand and Scores are nil when
// the server left them out; an empty JSON array still decodes to a non-nil
// slice.
type SyncState struct {
	DeckSize      int            `json:"deck_size"`
	Turn          string         `json:"turn"`
	Pending       string         `json:"pending"`
	Hand          []string       `json:"hand"`
	Scores        map[string]int `json:"scores"`
	DiscardString string         `json:"discard_string"`
	Message       string         `json:"message"`
	Error         string         `json:"error"`
	OpponentCount int            `json:"opponent_count"`
}

type RoundOver struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// GameOver carries either a final score (someone reached the target) or a
// reason and points (the last round decided it).
type GameOver struct {
	Winner string `json:"winner"`
	Score  *int   `json:"score,omitempty"`
	Reason string `json:"reason,omitempty"`
	Points *int   `json:"points,omitempty"`
}

type ActionError struct {
	Error string `json:"error"`
}
