// Copyright 2026 The Osmium Authors.
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

package pmm

import (
	"fmt"
	"sync/atomic"

	"github.com/osmium-kernel/osmium/pkg/mem"
)

// FrameTracker is a shared-ownership handle on an allocated frame. The
// frame goes back to the allocator's free list synchronously when the
// last reference is dropped, which makes frame lifetime exactly the
// lifetime of the owning handles (a framed segment's backing frames, a
// page-table node's frame).
type FrameTracker struct {
	allocator *Allocator
	frame     Frame
	refs      atomic.Int64
}

func newFrameTracker(a *Allocator, f Frame) *FrameTracker {
	t := &FrameTracker{allocator: a, frame: f}
	t.refs.Store(1)
	return t
}

// Frame returns the tracked frame.
func (t *FrameTracker) Frame() Frame {
	return t.frame
}

// Address returns the physical address of the tracked frame.
func (t *FrameTracker) Address() mem.PhysAddr {
	return t.frame.Address()
}

// IncRef adds a reference and returns the tracker for convenience.
func (t *FrameTracker) IncRef() *FrameTracker {
	if t.refs.Add(1) <= 1 {
		panic(fmt.Sprintf("pmm: IncRef on released %s", t.frame))
	}
	return t
}

// DecRef drops a reference. The last DecRef returns the frame to the
// allocator.
func (t *FrameTracker) DecRef() {
	switch refs := t.refs.Add(-1); {
	case refs < 0:
		panic(fmt.Sprintf("pmm: DecRef on released %s", t.frame))
	case refs == 0:
		t.allocator.release(t.frame)
	}
}
