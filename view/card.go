/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package view

import (
	"strings"

	"github.com/Seednode/knockbox/cards"
	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"
)

const (
	cardInner = 6
	cardWidth = cardInner + 2
)

var faceLabels = map[cards.Face]string{
	cards.FaceKing:   "KING",
	cards.FaceQueen:  "QUEEN",
	cards.FacePrince: "PRINCE",
}

func fit(s string) string {
	return runewidth.FillRight(runewidth.Truncate(s, cardInner, ""), cardInner)
}

func centered(s string) string {
	s = runewidth.Truncate(s, cardInner, "")
	left := (cardInner - runewidth.StringWidth(s)) / 2

	return fit(strings.Repeat(" ", left) + s)
}

// centerLines draws the middle of a card in three rows.
func centerLines(v cards.VisualCard) [3]string {
	blank := strings.Repeat(" ", cardInner)

	switch v.Center.Kind {
	case cards.CenterAce:
		return [3]string{blank, centered(v.Center.Glyph), blank}
	case cards.CenterFace:
		return [3]string{blank, centered(faceLabels[v.Center.Face]), blank}
	case cards.CenterPips:
		pips := v.Pips()
		rows := [3]string{blank, blank, blank}
		for r := 0; r < 3 && len(pips) > 0; r++ {
			n := min(4, len(pips))
			if r == 2 {
				n = len(pips)
			}
			rows[r] = centered(strings.Join(pips[:n], ""))
			pips = pips[n:]
		}
		return rows
	default:
		return [3]string{blank, centered(v.Center.Label), blank}
	}
}

// cardLines draws a card as a small box, corners included.
func cardLines(v cards.VisualCard, entering bool) []string {
	corner := v.Corner()
	mid := centerLines(v)

	lines := []string{
		"┌" + strings.Repeat("─", cardInner) + "┐",
		"│" + fit(corner) + "│",
		"│" + mid[0] + "│",
		"│" + mid[1] + "│",
		"│" + mid[2] + "│",
		"│" + runewidth.FillLeft(corner, cardInner) + "│",
		"└" + strings.Repeat("─", cardInner) + "┘",
	}

	style := pterm.Style{}
	switch v.Color {
	case cards.ColorRed:
		style = pterm.Style{pterm.FgRed}
	case cards.ColorBlack:
		style = pterm.Style{pterm.FgDefault}
	}
	if entering {
		style = append(style, pterm.Bold)
	}

	for i, l := range lines {
		lines[i] = style.Sprint(l)
	}

	return lines
}

// emptySlot is drawn where a pile has no card.
func emptySlot(label string) []string {
	lines := []string{
		"┌" + strings.Repeat("─", cardInner) + "┐",
		"│" + strings.Repeat(" ", cardInner) + "│",
		"│" + strings.Repeat(" ", cardInner) + "│",
		"│" + centered(label) + "│",
		"│" + strings.Repeat(" ", cardInner) + "│",
		"│" + strings.Repeat(" ", cardInner) + "│",
		"└" + strings.Repeat("─", cardInner) + "┘",
	}

	return lines
}

func cardBack() []string {
	row := "│" + strings.Repeat("░", cardInner) + "│"

	return []string{
		"┌" + strings.Repeat("─", cardInner) + "┐",
		row, row, row, row, row,
		"└" + strings.Repeat("─", cardInner) + "┘",
	}
}

// sideBySide joins blocks of lines horizontally. Block i is pushed down by
// drops[i] rows; drops may be nil.
func sideBySide(blocks [][]string, drops []int, gap int) string {
	height := 0
	for i, b := range blocks {
		h := len(b)
		if drops != nil {
			h += drops[i]
		}
		height = max(height, h)
	}

	spacer := strings.Repeat(" ", gap)

	var sb strings.Builder
	for row := range height {
		for i, b := range blocks {
			if i > 0 {
				sb.WriteString(spacer)
			}

			r := row
			if drops != nil {
				r -= drops[i]
			}
			if r >= 0 && r < len(b) {
				sb.WriteString(b[r])
			} else {
				sb.WriteString(strings.Repeat(" ", cardWidth))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
