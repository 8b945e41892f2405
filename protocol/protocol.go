/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package protocol defines the events exchanged with the game server and the
// JSON envelope they travel in.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Outbound intents.
const (
	EventJoin        = "join"
	EventDrawCard    = "draw_card"
	EventDiscardCard = "discard_card"
	EventKnock       = "knock"
	EventNewRound    = "new_round"
	EventNewGame     = "new_game"
	EventReorderHand = "reorder_hand"
)

// Inbound events.
const (
	EventSyncState   = "sync_state"
	EventRoundOver   = "round_over"
	EventGameOver    = "game_over"
	EventActionError = "action_error"
)

// Local events, never sent by the server. The connection manager injects
// them into the inbound stream when the socket drops or comes back.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

// Older servers speak these names.
var legacyInbound = map[string]string{
	"update_game": EventSyncState,
	"knock_error": EventActionError,
}

var legacyOutbound = map[string]string{
	EventJoin:        "join_game",
	EventReorderHand: "new_hand",
}

// Canonical maps a legacy inbound event name to its current name. Unknown
// names are returned unchanged.
func Canonical(event string) string {
	if name, ok := legacyInbound[event]; ok {
		return name
	}

	return event
}

// Legacy returns the name an older server expects for an outbound event.
func Legacy(event string) string {
	if name, ok := legacyOutbound[event]; ok {
		return name
	}

	return event
}

// Source names a pile to draw from.
type Source string

const (
	SourceStock   Source = "stock"
	SourceDiscard Source = "discard"
)

// Envelope is one websocket text frame.
type Envelope struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

var ErrMissingType = errors.New("envelope has no type")

// Encode wraps payload in an envelope. A nil payload produces an envelope
// without data.
func Encode(event, id string, payload any) (Envelope, error) {
	env := Envelope{Type: event, ID: id}

	if payload == nil {
		return env, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", event, err)
	}
	env.Data = data

	return env, nil
}

// Decode parses a raw frame and canonicalizes its event name.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode frame: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}
	env.Type = Canonical(env.Type)

	return env, nil
}

// Unmarshal decodes the envelope data into v. Missing data leaves v at its
// zero value.
func (e Envelope) Unmarshal(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}

	return nil
}
