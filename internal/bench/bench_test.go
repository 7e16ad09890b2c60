// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bench_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/pktq"
	"code.hybscloud.com/pktq/internal/bench"
)

func TestRunTimedDrainsEverything(t *testing.T) {
	if pktq.RaceEnabled {
		t.Skip("skip: CAS-based algorithm uses cross-variable memory ordering")
	}

	q, err := pktq.NewMPMC[pktq.Packet](256)
	require.NoError(t, err)

	res := bench.RunTimed(q, bench.Config{NumProducers: 2, NumConsumers: 2},
		100*time.Millisecond, func(i int) pktq.Packet {
			return pktq.Packet{ID: uint64(i)}
		})

	require.Positive(t, res.Produced, "producers made no progress")
	require.Equal(t, res.Produced, res.Consumed, "run left messages behind")
	require.True(t, q.Empty(), "queue not empty after drain")
	require.GreaterOrEqual(t, res.Elapsed, 100*time.Millisecond)
}

func TestThroughput(t *testing.T) {
	r := bench.Result{Consumed: 1000, Elapsed: time.Second}
	require.InDelta(t, 1000.0, r.Throughput(), 0.001)

	var zero bench.Result
	require.Zero(t, zero.Throughput())
}
