/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package view

import (
	"sync/atomic"
	"time"
)

// EntranceDuration is how long a newly dealt card stays highlighted.
const EntranceDuration = 300 * time.Millisecond

// entrance is the highlight timer of one hand position.
type entrance struct {
	timer  *time.Timer
	active atomic.Bool
}

func newEntrance(d time.Duration, expired func()) *entrance {
	e := &entrance{}
	e.active.Store(true)

	e.timer = time.AfterFunc(d, func() {
		if e.active.CompareAndSwap(true, false) && expired != nil {
			expired()
		}
	})

	return e
}

func (e *entrance) entering() bool {
	return e.active.Load()
}

// stop cancels the timer; expired will not be called afterwards.
func (e *entrance) stop() {
	e.active.Store(false)
	e.timer.Stop()
}
