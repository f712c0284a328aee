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

// Package pmm implements the physical memory manager: a frame allocator
// over a fixed region of physical memory and reference-counted frame
// handles that return their frame to the allocator when the last owner
// drops them.
package pmm

import (
	"fmt"

	"github.com/osmium-kernel/osmium/pkg/mem"
)

// Frame is a physical page number.
type Frame uint64

// FrameFromAddress returns the frame containing the given physical address.
func FrameFromAddress(addr mem.PhysAddr) Frame {
	return Frame(addr >> mem.PageShift)
}

// Address returns the physical address of the first byte of the frame.
func (f Frame) Address() mem.PhysAddr {
	return mem.PhysAddr(f) << mem.PageShift
}

// String implements fmt.Stringer.String.
func (f Frame) String() string {
	return fmt.Sprintf("frame %#x", uint64(f))
}
