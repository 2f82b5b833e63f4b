// Copyright 2025 CardinalHQ, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package state

import (
	"math/rand/v2"
	"time"
)

// RunState carries the per-request randomness and timing. It is not safe
// for concurrent use; each generation request gets its own.
type RunState struct {
	Seed      uint64
	Wallclock time.Time
	RND       *rand.Rand
}

func NewRunState(seed uint64) *RunState {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RunState{
		Seed:      seed,
		Wallclock: time.Now(),
		RND:       MakeRNG(seed),
	}
}

func MakeRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Uniform returns a draw on the open interval (0,1). rand.Float64 covers
// [0,1), so only zero needs to be redrawn.
func (rs *RunState) Uniform() float64 {
	for {
		if u := rs.RND.Float64(); u > 0 {
			return u
		}
	}
}
