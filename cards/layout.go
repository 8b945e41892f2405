/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cards

import "math"

const (
	FanAngleStep = 15.0 // degrees between neighbours
	FanSpacing   = 40.0 // horizontal offset between neighbours
	FanDrop      = 8.0  // how much lower each step away from the center sits
)

// Every card is translated from the center of the hand container and rotated
// about its own bottom-center, so the fan reads as cards held in a hand.
const (
	Pivot  = "center"
	Origin = "bottom center"
)

// Transform places one card of the fan.
type Transform struct {
	Angle   float64
	XOffset float64
	YOffset float64
}

// Layout returns the transform of the card at index in a hand of n cards. It
// depends only on position and count.
func Layout(n, index int) Transform {
	center := float64(n-1) / 2
	d := float64(index) - center

	return Transform{
		Angle:   d * FanAngleStep,
		XOffset: d * FanSpacing,
		YOffset: -math.Abs(d) * FanDrop,
	}
}

// Fan lays out a whole hand of n cards.
func Fan(n int) []Transform {
	if n <= 0 {
		return nil
	}

	out := make([]Transform, n)
	for i := range out {
		out[i] = Layout(n, i)
	}

	return out
}
