// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build amd64 || arm64

package pktq

// cpuRelax emits one CPU relaxation hint (PAUSE on amd64, YIELD on
// arm64). It lowers the power and pipeline cost of spin loops and
// plays no part in correctness.
//
//go:noescape
func cpuRelax()
