// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pktq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPMC is a bounded multi-producer multi-consumer FIFO ring.
//
// Coordination is entirely per-slot: every slot carries a sequence
// number that encodes which ticket may act on it next, and the two
// cursors hand out tickets to producers and consumers. A producer
// holding ticket t may write slot t&mask once its sequence equals t,
// and publishes by storing t+1. A consumer holding ticket t may read
// once the sequence equals t+1, and recycles the slot one lap ahead
// by storing t+capacity.
//
// Single-item and try operations are lock-free. Batch operations
// reserve a run of tickets with one CAS and then publish slot by
// slot; a reservation can briefly wait on a predecessor that has
// claimed but not yet published its slot.
//
// Cursors are monotonic 64-bit counters. Wraparound would take
// centuries at realistic rates and is not handled.
//
// Memory: n slots, each padded to a cache line; the cursors live on
// their own cache lines.
type MPMC[T any] struct {
	_        pad
	tail     atomix.Uint64 // Producer ticket cursor
	_        pad
	head     atomix.Uint64 // Consumer ticket cursor
	_        pad
	buffer   []mpmcSlot[T]
	mask     uint64
	capacity uint64
	stats    *Stats // nil when counters are disabled
}

type mpmcSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort // Pad to cache line
}

func newMPMC[T any](capacity int, counters bool) (*MPMC[T], error) {
	if capacity <= 0 || uint64(capacity) > maxCapacity {
		return nil, ErrInvalidCapacity
	}

	n := roundToPow2(uint64(capacity))
	q := &MPMC[T]{
		buffer:   make([]mpmcSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}
	if counters {
		q.stats = &Stats{}
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}

	return q, nil
}

// NewMPMC creates a bounded MPMC ring. Capacity rounds up to the next
// power of two, minimum 2. Returns ErrInvalidCapacity if capacity is
// not positive or the rounded capacity would reach 2^63.
func NewMPMC[T any](capacity int) (*MPMC[T], error) {
	return newMPMC[T](capacity, false)
}

// NewMPMCWithCounters is NewMPMC with advisory operation counters
// enabled. See [MPMC.Stats].
func NewMPMCWithCounters[T any](capacity int) (*MPMC[T], error) {
	return newMPMC[T](capacity, true)
}

// Enqueue adds an element to the queue.
//
// Transient contention is absorbed by adaptive backoff; ErrWouldBlock
// is returned only when the queue is definitively full, never as a
// spurious failure.
func (q *MPMC[T]) Enqueue(elem *T) error {
	if q.stats != nil {
		q.stats.enqueueAttempts.Add(1)
	}

	var bo Backoff
	tail := q.tail.LoadRelaxed()
	for {
		slot := &q.buffer[tail&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			// Slot is writable for this ticket; claim it.
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = *elem
				slot.seq.StoreRelease(tail + 1)
				if q.stats != nil {
					q.stats.enqueueSuccesses.Add(1)
				}
				return nil
			}
			// Lost the ticket to another producer; that is progress.
			bo.Reset()
			tail = q.tail.LoadRelaxed()
		} else if diff < 0 {
			// The slot has not been recycled since its last writer.
			// Only the opposite cursor tells full apart from a slow
			// consumer mid-recycle.
			head := q.head.LoadAcquire()
			if tail-head >= q.capacity {
				return ErrWouldBlock
			}
			if q.stats != nil {
				q.stats.contentionEvents.Add(1)
			}
			bo.Wait()
			tail = q.tail.LoadRelaxed()
		} else {
			// A later producer already passed this ticket.
			bo.Wait()
			tail = q.tail.LoadRelaxed()
		}
	}
}

// Dequeue removes and returns the oldest element.
//
// Transient contention is absorbed by adaptive backoff; the
// (zero-value, ErrWouldBlock) result means the queue was definitively
// empty at the check.
func (q *MPMC[T]) Dequeue() (T, error) {
	if q.stats != nil {
		q.stats.dequeueAttempts.Add(1)
	}

	var bo Backoff
	head := q.head.LoadRelaxed()
	for {
		slot := &q.buffer[head&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + q.capacity)
				if q.stats != nil {
					q.stats.dequeueSuccesses.Add(1)
				}
				return elem, nil
			}
			bo.Reset()
			head = q.head.LoadRelaxed()
		} else if diff < 0 {
			tail := q.tail.LoadAcquire()
			if head >= tail {
				var zero T
				return zero, ErrWouldBlock
			}
			if q.stats != nil {
				q.stats.contentionEvents.Add(1)
			}
			bo.Wait()
			head = q.head.LoadRelaxed()
		} else {
			bo.Wait()
			head = q.head.LoadRelaxed()
		}
	}
}

// TryEnqueue attempts exactly one claim with no retry loop.
//
// Returns ErrWouldBlock if the first-seen slot is not writable or the
// cursor CAS loses; under contention the failure may be spurious even
// when the queue has free space. Use Enqueue when a definitive
// full/not-full answer is required.
func (q *MPMC[T]) TryEnqueue(elem *T) error {
	tail := q.tail.LoadRelaxed()
	slot := &q.buffer[tail&q.mask]
	seq := slot.seq.LoadAcquire()

	if seq == tail && q.tail.CompareAndSwapAcqRel(tail, tail+1) {
		slot.data = *elem
		slot.seq.StoreRelease(tail + 1)
		return nil
	}
	return ErrWouldBlock
}

// TryDequeue attempts exactly one claim with no retry loop.
//
// Under contention the failure may be spurious even when the queue
// holds elements. Use Dequeue when a definitive empty/not-empty
// answer is required.
func (q *MPMC[T]) TryDequeue() (T, error) {
	head := q.head.LoadRelaxed()
	slot := &q.buffer[head&q.mask]
	seq := slot.seq.LoadAcquire()

	if seq == head+1 && q.head.CompareAndSwapAcqRel(head, head+1) {
		elem := slot.data
		var zero T
		slot.data = zero
		slot.seq.StoreRelease(head + q.capacity)
		return elem, nil
	}
	var zero T
	return zero, ErrWouldBlock
}

// EnqueueBatch enqueues elements from src in order and returns how
// many were placed.
//
// A run of tickets is reserved with a single cursor CAS, then each
// slot is published individually, so a concurrent consumer observes
// the batch in strictly increasing ticket order. The count is less
// than len(src) only when the queue ran out of space.
func (q *MPMC[T]) EnqueueBatch(src []T) int {
	if len(src) == 0 {
		return 0
	}
	if q.stats != nil {
		q.stats.batchEnqueueCalls.Add(1)
	}

	enqueued := 0
	var bo Backoff
	for enqueued < len(src) {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadAcquire()
		if tail-head >= q.capacity {
			break
		}

		n := q.capacity - (tail - head)
		if rem := uint64(len(src) - enqueued); rem < n {
			n = rem
		}

		if q.tail.CompareAndSwapAcqRel(tail, tail+n) {
			sw := spin.Wait{}
			for i := uint64(0); i < n; i++ {
				slot := &q.buffer[(tail+i)&q.mask]
				// A reservation can run ahead of a consumer that has
				// claimed this slot but not yet recycled it.
				for slot.seq.LoadAcquire() != tail+i {
					sw.Once()
				}
				slot.data = src[enqueued+int(i)]
				slot.seq.StoreRelease(tail + i + 1)
			}
			enqueued += int(n)
			bo.Reset()
		} else {
			bo.Wait()
		}
	}
	return enqueued
}

// DequeueBatch fills dst in FIFO order and returns how many elements
// were moved out. The count is less than len(dst) only when the queue
// ran dry.
func (q *MPMC[T]) DequeueBatch(dst []T) int {
	if len(dst) == 0 {
		return 0
	}
	if q.stats != nil {
		q.stats.batchDequeueCalls.Add(1)
	}

	dequeued := 0
	var bo Backoff
	for dequeued < len(dst) {
		head := q.head.LoadAcquire()
		tail := q.tail.LoadAcquire()
		if head >= tail {
			break
		}

		n := tail - head
		if rem := uint64(len(dst) - dequeued); rem < n {
			n = rem
		}

		if q.head.CompareAndSwapAcqRel(head, head+n) {
			sw := spin.Wait{}
			for i := uint64(0); i < n; i++ {
				slot := &q.buffer[(head+i)&q.mask]
				// The producer holding this ticket may not have
				// published yet.
				for slot.seq.LoadAcquire() != head+i+1 {
					sw.Once()
				}
				dst[dequeued+int(i)] = slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + i + q.capacity)
			}
			dequeued += int(n)
			bo.Reset()
		} else {
			bo.Wait()
		}
	}
	return dequeued
}

// Len returns the approximate number of queued elements.
//
// The cursors are loaded independently, so under concurrent updates
// the result may transiently exceed Cap; callers needing a bounded
// value must clamp. At quiescence Len is exact.
func (q *MPMC[T]) Len() int {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadAcquire()
	d := int64(tail) - int64(head)
	if d < 0 {
		return 0
	}
	return int(d)
}

// Cap returns the queue capacity (the rounded-up power of two).
func (q *MPMC[T]) Cap() int {
	return int(q.capacity)
}

// Empty reports whether the queue appears empty. Advisory; see Len.
func (q *MPMC[T]) Empty() bool {
	return q.Len() == 0
}

// Full reports whether the queue appears full. Advisory; see Len.
func (q *MPMC[T]) Full() bool {
	return q.Len() >= int(q.capacity)
}

// MemoryUsage returns the approximate footprint in bytes: the queue
// header plus the slot array.
func (q *MPMC[T]) MemoryUsage() uintptr {
	return unsafe.Sizeof(*q) + uintptr(q.capacity)*unsafe.Sizeof(q.buffer[0])
}

// Stats returns a snapshot of the advisory counters. The zero
// snapshot is returned when the queue was built without counters.
func (q *MPMC[T]) Stats() StatsSnapshot {
	if q.stats == nil {
		return StatsSnapshot{}
	}
	return q.stats.snapshot()
}

// ResetStats zeroes the advisory counters.
func (q *MPMC[T]) ResetStats() {
	if q.stats != nil {
		q.stats.reset()
	}
}
