/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package cards turns wire card tokens into something drawable and lays a
// hand out as a fan.
package cards

import (
	"strconv"
	"strings"
)

// Token is the wire form of a card, e.g. "Hearts 7" or "Spades K".
type Token string

type Color int

const (
	ColorNone Color = iota
	ColorRed
	ColorBlack
)

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorBlack:
		return "black"
	default:
		return ""
	}
}

// CenterKind selects what is drawn in the middle of a card.
type CenterKind int

const (
	CenterRaw CenterKind = iota
	CenterAce
	CenterFace
	CenterPips
	CenterLabel
)

// Face names the court card artwork.
type Face string

const (
	FaceKing   Face = "king"
	FaceQueen  Face = "queen"
	FacePrince Face = "prince"
)

var faceImages = map[Face]string{
	FaceKing:   "images/king.jpg",
	FaceQueen:  "images/queen.png",
	FacePrince: "images/prince.jpg",
}

// Image returns the artwork path for the face.
func (f Face) Image() string {
	return faceImages[f]
}

// Center is the middle of a card. Only the fields relevant to Kind are set.
type Center struct {
	Kind  CenterKind
	Glyph string
	Count int
	Face  Face
	Label string
	Large bool
}

// VisualCard is derived from a Token on every render and never stored.
type VisualCard struct {
	Raw    string
	Suit   string
	Rank   string
	Glyph  string
	Color  Color
	Center Center
}

var suitGlyphs = map[string]string{
	"Hearts":   "♥",
	"Diamonds": "♦",
	"Clubs":    "♣",
	"Spades":   "♠",
}

var faces = map[string]Face{
	"K": FaceKing,
	"Q": FaceQueen,
	"J": FacePrince,
}

// Glyph returns the symbol for a suit name, or the name itself when the suit
// is unknown.
func Glyph(suit string) string {
	if g, ok := suitGlyphs[suit]; ok {
		return g
	}

	return suit
}

func colorOf(suit string) Color {
	if suit == "Hearts" || suit == "Diamonds" {
		return ColorRed
	}

	return ColorBlack
}

// Decode never fails: anything it cannot read degrades to a card that shows
// the raw text.
func Decode(t Token) VisualCard {
	text := string(t)

	parts := strings.Split(text, " ")
	if len(parts) < 2 {
		return VisualCard{
			Raw:    text,
			Center: Center{Kind: CenterRaw, Label: text},
		}
	}

	suit, rank := parts[0], parts[1]
	glyph := Glyph(suit)

	v := VisualCard{
		Raw:   text,
		Suit:  suit,
		Rank:  rank,
		Glyph: glyph,
		Color: colorOf(suit),
	}

	switch face, isFace := faces[rank]; {
	case rank == "A":
		v.Center = Center{Kind: CenterAce, Glyph: glyph, Large: true}
	case isFace:
		v.Center = Center{Kind: CenterFace, Face: face, Large: true}
	default:
		if n, err := strconv.Atoi(rank); err == nil && n >= 2 && n <= 10 {
			v.Center = Center{Kind: CenterPips, Glyph: glyph, Count: n}
		} else {
			v.Center = Center{Kind: CenterLabel, Label: rank + " " + glyph, Large: true}
		}
	}

	return v
}

// Pips returns the glyph repeated once per pip. It is empty for anything but
// number cards.
func (v VisualCard) Pips() []string {
	if v.Center.Kind != CenterPips {
		return nil
	}

	pips := make([]string, v.Center.Count)
	for i := range pips {
		pips[i] = v.Center.Glyph
	}

	return pips
}

// Corner is the rank and suit printed in each corner. Raw cards have none.
func (v VisualCard) Corner() string {
	if v.Center.Kind == CenterRaw {
		return ""
	}

	return v.Rank + v.Glyph
}
