// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pktq

// Options configures queue creation.
type Options struct {
	// Advisory operation counters (off by default; when enabled each
	// operation adds a few relaxed increments)
	counters bool

	// Capacity (rounds up to next power of 2)
	capacity int
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	q, err := pktq.Build[Packet](pktq.New(4096).Counters())
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Capacity rounds up to the next power of 2, minimum 2. For example,
// capacity=3 results in actual capacity=4, capacity=1000 results in
// actual capacity=1024. Validation happens at Build time so that
// construction never panics.
func New(capacity int) *Builder {
	return &Builder{opts: Options{capacity: capacity}}
}

// Counters enables the advisory operation counters, exposed through
// [MPMC.Stats] and [MPMC.ResetStats].
func (b *Builder) Counters() *Builder {
	b.opts.counters = true
	return b
}

// Build creates the MPMC ring described by the builder. Returns
// ErrInvalidCapacity if the configured capacity is not positive or
// would round to 2^63.
func Build[T any](b *Builder) (*MPMC[T], error) {
	return newMPMC[T](b.opts.capacity, b.opts.counters)
}

// roundToPow2 rounds n up to the next power of 2, minimum 2.
// Callers validate against maxCapacity first.
func roundToPow2(n uint64) uint64 {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// maxCapacity is the largest requested capacity whose power-of-two
// rounding stays below 2^63.
const maxCapacity = uint64(1) << 62

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
