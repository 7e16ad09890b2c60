// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pktq

// Queue is the combined producer-consumer interface for the bounded
// MPMC ring.
//
// Queue provides non-blocking Enqueue and Dequeue operations. Both
// return ErrWouldBlock when they cannot proceed (queue full or empty).
// Any goroutine may act as producer and consumer at the same time;
// no roles are baked into the structure.
//
// Example:
//
//	q, err := pktq.NewMPMC[Packet](1024)
//	if err != nil {
//	    // invalid capacity
//	}
//
//	pkt := pktq.Packet{ID: 7}
//	if err := q.Enqueue(&pkt); err != nil {
//	    // Handle full queue
//	}
//
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem.ID)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Cap() int
}

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to avoid copying large structs.
// The queue stores a copy of the pointed-to value, so the original
// can be modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element to the queue. It retries through
	// transient contention with adaptive backoff and returns
	// ErrWouldBlock only when the queue is definitively full.
	Enqueue(elem *T) error

	// TryEnqueue attempts exactly one claim with no retry loop.
	// Returns ErrWouldBlock if the first-seen slot is not writable
	// or another producer wins the claim; the failure may be
	// spurious under contention.
	TryEnqueue(elem *T) error
}

// Consumer is the interface for dequeueing elements.
//
// The element is returned by value, moved out of the queue's internal
// buffer. The vacated slot is cleared so the ring never retains stale
// references across a reuse cycle.
type Consumer[T any] interface {
	// Dequeue removes and returns the oldest element. It retries
	// through transient contention with adaptive backoff and returns
	// (zero-value, ErrWouldBlock) only when the queue is definitively
	// empty.
	Dequeue() (T, error)

	// TryDequeue attempts exactly one claim with no retry loop.
	// The failure may be spurious under contention.
	TryDequeue() (T, error)
}

// BatchProducer enqueues runs of elements with a single cursor
// reservation per run, amortizing shared-cursor contention.
type BatchProducer[T any] interface {
	// EnqueueBatch enqueues elements from src in order and returns
	// how many were placed. Partial progress is normal: the count is
	// less than len(src) only when the queue ran out of space.
	EnqueueBatch(src []T) int
}

// BatchConsumer dequeues runs of elements with a single cursor
// reservation per run.
type BatchConsumer[T any] interface {
	// DequeueBatch fills dst in FIFO order and returns how many
	// elements were moved out. The count is less than len(dst) only
	// when the queue ran dry.
	DequeueBatch(dst []T) int
}
