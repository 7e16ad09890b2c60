// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bench drives timed producer/consumer runs against a queue
// for throughput measurement. It is shared by the pktqbench command
// and its tests.
package bench

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Queue is the operation surface the harness needs. *pktq.MPMC[T]
// satisfies it.
type Queue[T any] interface {
	Enqueue(elem *T) error
	Dequeue() (T, error)
}

// Config sets the concurrency of one run.
type Config struct {
	NumProducers int
	NumConsumers int
}

// Result reports what a run moved through the queue.
type Result struct {
	Produced int64
	Consumed int64
	Elapsed  time.Duration
}

// RunTimed spawns cfg.NumProducers producers and cfg.NumConsumers
// consumers against q for roughly the given duration. When the window
// closes, producers stop, and consumers drain whatever remains before
// returning, so Consumed == Produced at return. valueGen produces the
// i-th value to enqueue.
func RunTimed[T any](q Queue[T], cfg Config, duration time.Duration, valueGen func(int) T) Result {
	var produced, consumed atomix.Int64
	var seq atomix.Int64
	var stop, prodDone atomix.Bool

	start := time.Now()

	var prodWg, consWg sync.WaitGroup
	prodWg.Add(cfg.NumProducers)
	consWg.Add(cfg.NumConsumers)

	for range cfg.NumProducers {
		go func() {
			defer prodWg.Done()
			backoff := iox.Backoff{}
			for !stop.Load() {
				v := valueGen(int(seq.Add(1) - 1))
				for q.Enqueue(&v) != nil {
					if stop.Load() {
						return
					}
					backoff.Wait()
				}
				backoff.Reset()
				produced.Add(1)
			}
		}()
	}

	for range cfg.NumConsumers {
		go func() {
			defer consWg.Done()
			backoff := iox.Backoff{}
			for {
				if _, err := q.Dequeue(); err == nil {
					consumed.Add(1)
					backoff.Reset()
					continue
				}
				// Empty. Once all producers have joined, drain what
				// is left; the next empty read is final.
				if prodDone.Load() {
					for {
						if _, err := q.Dequeue(); err != nil {
							return
						}
						consumed.Add(1)
					}
				}
				backoff.Wait()
			}
		}()
	}

	time.Sleep(duration)
	stop.Store(true)
	prodWg.Wait()
	prodDone.Store(true)
	consWg.Wait()

	return Result{
		Produced: produced.Load(),
		Consumed: consumed.Load(),
		Elapsed:  time.Since(start),
	}
}

// Throughput returns consumed messages per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Consumed) / r.Elapsed.Seconds()
}
