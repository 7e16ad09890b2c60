// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pktq_test

import (
	"errors"
	"math/bits"
	"testing"

	"code.hybscloud.com/pktq"
)

// =============================================================================
// Construction
// =============================================================================

// TestConstruction verifies capacity validation and rounding.
func TestConstruction(t *testing.T) {
	if _, err := pktq.NewMPMC[int](0); !errors.Is(err, pktq.ErrInvalidCapacity) {
		t.Fatalf("NewMPMC(0): got %v, want ErrInvalidCapacity", err)
	}
	if _, err := pktq.NewMPMC[int](-1); !errors.Is(err, pktq.ErrInvalidCapacity) {
		t.Fatalf("NewMPMC(-1): got %v, want ErrInvalidCapacity", err)
	}
	if bits.UintSize == 64 {
		// A capacity whose rounding would reach 2^63 is rejected.
		huge := int(^uint(0) >> 1)
		if _, err := pktq.NewMPMC[int](huge); !errors.Is(err, pktq.ErrInvalidCapacity) {
			t.Fatalf("NewMPMC(max int): got %v, want ErrInvalidCapacity", err)
		}
	}

	cases := []struct {
		requested int
		want      int
	}{
		{1, 2},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{1000, 1024},
		{1024, 1024},
	}
	for _, c := range cases {
		q, err := pktq.NewMPMC[int](c.requested)
		if err != nil {
			t.Fatalf("NewMPMC(%d): %v", c.requested, err)
		}
		if q.Cap() != c.want {
			t.Fatalf("Cap for requested %d: got %d, want %d", c.requested, q.Cap(), c.want)
		}
	}
}

// TestBuilder verifies the fluent construction path.
func TestBuilder(t *testing.T) {
	q, err := pktq.Build[int](pktq.New(3).Counters())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}

	if _, err := pktq.Build[int](pktq.New(0)); !errors.Is(err, pktq.ErrInvalidCapacity) {
		t.Fatalf("Build with capacity 0: got %v, want ErrInvalidCapacity", err)
	}
}

// =============================================================================
// Basic Operations
// =============================================================================

// TestMPMCBasic fills a capacity-3 (rounded to 4) queue, verifies the
// full condition, and drains in FIFO order.
func TestMPMCBasic(t *testing.T) {
	q, err := pktq.NewMPMC[pktq.Packet](3)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}
	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}
	if !q.Empty() || q.Full() || q.Len() != 0 {
		t.Fatalf("fresh queue: Len=%d Empty=%v Full=%v", q.Len(), q.Empty(), q.Full())
	}

	for i := range 4 {
		pkt := pktq.Packet{ID: uint64(i)}
		if err := q.Enqueue(&pkt); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if q.Len() != 4 || !q.Full() {
		t.Fatalf("filled queue: Len=%d Full=%v", q.Len(), q.Full())
	}

	pkt := pktq.Packet{ID: 4}
	if err := q.Enqueue(&pkt); !errors.Is(err, pktq.ErrWouldBlock) {
		t.Fatalf("Enqueue on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		out, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if out.ID != uint64(i) {
			t.Fatalf("Dequeue(%d): got id %d, want %d", i, out.ID, i)
		}
	}

	if _, err := q.Dequeue(); !errors.Is(err, pktq.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}
	if !q.Empty() {
		t.Fatal("drained queue not empty")
	}
}

// TestEnqueueAfterDequeueFromFull verifies a single slot becomes
// reusable as soon as one element leaves a full queue.
func TestEnqueueAfterDequeueFromFull(t *testing.T) {
	q, err := pktq.NewMPMC[int](4)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}

	for i := range 4 {
		v := i
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if _, err := q.Dequeue(); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}

	v := 4
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue after freeing one slot: %v", err)
	}
}

// =============================================================================
// Try Variants
// =============================================================================

// TestTryVariants verifies the single-attempt operations on the
// definitive boundary states.
func TestTryVariants(t *testing.T) {
	q, err := pktq.NewMPMC[int](2)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}

	if _, err := q.TryDequeue(); !errors.Is(err, pktq.ErrWouldBlock) {
		t.Fatalf("TryDequeue on empty: got %v, want ErrWouldBlock", err)
	}

	for i := range 2 {
		v := i + 10
		if err := q.TryEnqueue(&v); err != nil {
			t.Fatalf("TryEnqueue(%d): %v", i, err)
		}
	}

	v := 99
	if err := q.TryEnqueue(&v); !errors.Is(err, pktq.ErrWouldBlock) {
		t.Fatalf("TryEnqueue on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 2 {
		got, err := q.TryDequeue()
		if err != nil {
			t.Fatalf("TryDequeue(%d): %v", i, err)
		}
		if got != i+10 {
			t.Fatalf("TryDequeue(%d): got %d, want %d", i, got, i+10)
		}
	}
}

// =============================================================================
// Observers
// =============================================================================

// TestMemoryUsage checks the footprint accounts for every slot.
func TestMemoryUsage(t *testing.T) {
	small, err := pktq.NewMPMC[int](8)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}
	large, err := pktq.NewMPMC[int](64)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}

	if small.MemoryUsage() == 0 {
		t.Fatal("MemoryUsage: got 0")
	}
	// 8x the slots must grow the footprint by more than the header.
	if large.MemoryUsage() <= small.MemoryUsage() {
		t.Fatalf("MemoryUsage: %d (cap 64) <= %d (cap 8)",
			large.MemoryUsage(), small.MemoryUsage())
	}
}

// TestFillDrainCycles runs repeated full fill / full drain rounds and
// checks the multiset survives each lap of the ring.
func TestFillDrainCycles(t *testing.T) {
	q, err := pktq.NewMPMC[int](8)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}

	for round := range 100 {
		for i := range 8 {
			v := round*100 + i
			if err := q.Enqueue(&v); err != nil {
				t.Fatalf("round %d: Enqueue(%d): %v", round, i, err)
			}
		}
		for i := range 8 {
			got, err := q.Dequeue()
			if err != nil {
				t.Fatalf("round %d: Dequeue(%d): %v", round, i, err)
			}
			if got != round*100+i {
				t.Fatalf("round %d: got %d, want %d", round, got, round*100+i)
			}
		}
		if !q.Empty() {
			t.Fatalf("round %d: queue not empty after drain", round)
		}
	}
}

// =============================================================================
// Packet
// =============================================================================

// TestPacket covers the demonstration record helpers.
func TestPacket(t *testing.T) {
	var p pktq.Packet
	if p.Valid() {
		t.Fatal("zero packet reports valid")
	}

	p = pktq.Packet{Data: []byte{1, 2, 3}, Priority: pktq.PriorityHigh, ID: 7}
	if !p.Valid() {
		t.Fatal("packet with payload reports invalid")
	}

	low := pktq.Packet{Priority: pktq.PriorityLow, ID: 9}
	if !low.Less(p) {
		t.Fatal("Less: low priority should order before high")
	}
	samePrio := pktq.Packet{Priority: pktq.PriorityHigh, ID: 3}
	if !samePrio.Less(p) {
		t.Fatal("Less: same priority should order by id")
	}

	p.Reset()
	if p.Valid() || p.ID != 0 || p.Priority != pktq.PriorityLow {
		t.Fatalf("Reset: got %+v", p)
	}
}
