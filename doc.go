// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pktq provides a bounded, lock-free MPMC FIFO ring for
// fixed-size records.
//
// The queue targets high-throughput packet-processing pipelines:
// receive rings, work distribution among worker cores, inter-stage
// hand-off. Coordination is per-slot, via monotonic sequence
// counters, with two shared cursors handing out producer and consumer
// tickets. No operation takes a lock; contention is absorbed by an
// adaptive spin/yield/sleep backoff.
//
// # Quick Start
//
//	q, err := pktq.NewMPMC[pktq.Packet](1024)
//	if err != nil {
//	    // capacity was invalid
//	}
//
//	pkt := pktq.Packet{ID: 1, Priority: pktq.PriorityHigh}
//	if err := q.Enqueue(&pkt); err != nil {
//	    // queue full - handle backpressure
//	}
//
//	out, err := q.Dequeue()
//	if err != nil {
//	    // queue empty - try again later
//	}
//	_ = out
//
// Advisory counters are opt-in at construction:
//
//	q, err := pktq.Build[pktq.Packet](pktq.New(4096).Counters())
//	...
//	snap := q.Stats()
//	fmt.Println(snap.EnqueueSuccessRate())
//
// # Operation Variants
//
// Enqueue and Dequeue loop through transient contention and fail only
// on a definitively full or empty queue. TryEnqueue and TryDequeue
// make exactly one claim attempt and may fail spuriously under
// contention; use them in caller-managed polling loops.
//
// EnqueueBatch and DequeueBatch reserve a run of slots with a single
// cursor CAS, amortizing shared-cursor contention across the run.
// Both allow partial progress and report the count transferred.
//
// # Common Patterns
//
// Producer with backpressure:
//
//	backoff := iox.Backoff{}
//	for _, pkt := range pkts {
//	    for q.Enqueue(&pkt) != nil {
//	        backoff.Wait()
//	    }
//	    backoff.Reset()
//	}
//
// Worker draining in batches:
//
//	buf := make([]pktq.Packet, 64)
//	for running {
//	    n := q.DequeueBatch(buf)
//	    for _, pkt := range buf[:n] {
//	        process(pkt)
//	    }
//	}
//
// # Semantics
//
// Every record successfully enqueued is returned by exactly one
// dequeue, in ticket order: FIFO holds across any mix of single-item
// and batch operations. The release store that publishes a slot pairs
// with the acquire load that claims it, so everything that
// happened-before an enqueue is visible to the goroutine that
// dequeues the record.
//
// Len, Empty and Full are advisory: their two cursor loads are not
// atomic together, so concurrent updates can make Len transiently
// exceed Cap. At quiescence they are exact.
//
// # Limitations
//
//   - Capacity is fixed at construction (rounded up to a power of 2).
//   - No blocking operations or condition signaling; layer waiting
//     above the queue (see iox.Backoff).
//   - Priority is payload metadata only; the queue is strictly FIFO.
//   - No fairness guarantees between producers or between consumers.
package pktq
