// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pktq

import (
	"runtime"
	"time"
)

const (
	backoffMaxSpins  = 16
	backoffMaxYields = 64
)

// Backoff is the contention strategy used by the looping queue
// operations. It escalates in three phases as the contention counter
// grows, and is reset whenever the caller makes forward progress:
//
//	0..15  spin, 2^count CPU relaxation hints per wait
//	16..79 cooperative scheduler yield
//	80..   sleep ~1µs
//
// Short same-cache-line contention resolves within the spin phase;
// yielding helps when the holder of the opposite cursor lost its
// timeslice; the sleep phase keeps a stalled peer from costing a full
// core. The zero value is ready to use.
type Backoff struct {
	count int
}

// Wait performs one wait step and advances the contention counter.
func (b *Backoff) Wait() {
	switch {
	case b.count < backoffMaxSpins:
		for i := 0; i < 1<<b.count; i++ {
			cpuRelax()
		}
		b.count++
	case b.count < backoffMaxSpins+backoffMaxYields:
		runtime.Gosched()
		b.count++
	default:
		time.Sleep(time.Microsecond)
	}
}

// Reset returns the strategy to the spin phase.
func (b *Backoff) Reset() {
	b.count = 0
}
