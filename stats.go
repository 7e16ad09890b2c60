// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pktq

import "code.hybscloud.com/atomix"

// Stats holds the advisory operation counters of a queue built with
// counters enabled. All updates use relaxed ordering; values are
// approximate while operations are in flight and exact at quiescence.
// Counters never influence queue behavior.
type Stats struct {
	enqueueAttempts   atomix.Uint64
	enqueueSuccesses  atomix.Uint64
	dequeueAttempts   atomix.Uint64
	dequeueSuccesses  atomix.Uint64
	batchEnqueueCalls atomix.Uint64
	batchDequeueCalls atomix.Uint64
	contentionEvents  atomix.Uint64
}

func (s *Stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		EnqueueAttempts:   s.enqueueAttempts.LoadRelaxed(),
		EnqueueSuccesses:  s.enqueueSuccesses.LoadRelaxed(),
		DequeueAttempts:   s.dequeueAttempts.LoadRelaxed(),
		DequeueSuccesses:  s.dequeueSuccesses.LoadRelaxed(),
		BatchEnqueueCalls: s.batchEnqueueCalls.LoadRelaxed(),
		BatchDequeueCalls: s.batchDequeueCalls.LoadRelaxed(),
		ContentionEvents:  s.contentionEvents.LoadRelaxed(),
	}
}

func (s *Stats) reset() {
	s.enqueueAttempts.StoreRelaxed(0)
	s.enqueueSuccesses.StoreRelaxed(0)
	s.dequeueAttempts.StoreRelaxed(0)
	s.dequeueSuccesses.StoreRelaxed(0)
	s.batchEnqueueCalls.StoreRelaxed(0)
	s.batchDequeueCalls.StoreRelaxed(0)
	s.contentionEvents.StoreRelaxed(0)
}

// StatsSnapshot is an immutable copy of the counters at one moment.
type StatsSnapshot struct {
	EnqueueAttempts   uint64
	EnqueueSuccesses  uint64
	DequeueAttempts   uint64
	DequeueSuccesses  uint64
	BatchEnqueueCalls uint64
	BatchDequeueCalls uint64
	ContentionEvents  uint64
}

// EnqueueSuccessRate returns successes/attempts, 0 when no attempts.
func (s StatsSnapshot) EnqueueSuccessRate() float64 {
	if s.EnqueueAttempts == 0 {
		return 0
	}
	return float64(s.EnqueueSuccesses) / float64(s.EnqueueAttempts)
}

// DequeueSuccessRate returns successes/attempts, 0 when no attempts.
func (s StatsSnapshot) DequeueSuccessRate() float64 {
	if s.DequeueAttempts == 0 {
		return 0
	}
	return float64(s.DequeueSuccesses) / float64(s.DequeueAttempts)
}
