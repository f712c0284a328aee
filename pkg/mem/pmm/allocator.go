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
	"errors"
	"fmt"
	"sync"

	"github.com/osmium-kernel/osmium/pkg/mem"
)

// ErrFramesExhausted is returned by Alloc when no free frame remains.
var ErrFramesExhausted = errors.New("pmm: no free physical frames")

// frameWords is the number of 64-bit words backing one frame.
const frameWords = mem.PageSize / 8

// Allocator hands out frames from a fixed physical region [base,
// base+count) using a LIFO free list. Every frame is backed by real
// storage so that consumers (page-table nodes in particular) can write
// through it.
//
// The allocator is the one resource shared between address spaces. Its
// lock is held for the duration of a single Alloc or free call, never
// longer, so allocations from concurrently mutated address spaces may
// interleave freely.
type Allocator struct {
	mu   sync.Mutex
	base Frame
	free []Frame

	// words is sized once at construction and never resized, so
	// pointers handed out by Words stay valid for the allocator's
	// lifetime.
	words [][frameWords]uint64
}

// NewAllocator returns an allocator managing count frames starting at
// base. All frames start free; lower frame numbers are handed out first.
func NewAllocator(base Frame, count int) *Allocator {
	a := &Allocator{
		base:  base,
		free:  make([]Frame, 0, count),
		words: make([][frameWords]uint64, count),
	}
	for i := count - 1; i >= 0; i-- {
		a.free = append(a.free, base+Frame(i))
	}
	return a
}

// Alloc removes one frame from the free list and returns a tracker
// holding the sole reference to it. It fails with ErrFramesExhausted
// when the free list is empty.
func (a *Allocator) Alloc() (*FrameTracker, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.free) == 0 {
		return nil, ErrFramesExhausted
	}
	f := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	return newFrameTracker(a, f), nil
}

// release returns a frame to the free list. Called by FrameTracker when
// its reference count drops to zero.
func (a *Allocator) release(f Frame) {
	a.checkOwned(f)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, f)
}

// Words exposes the storage backing a frame as 64-bit words.
func (a *Allocator) Words(f Frame) *[frameWords]uint64 {
	a.checkOwned(f)
	return &a.words[f-a.base]
}

func (a *Allocator) checkOwned(f Frame) {
	if f < a.base || f >= a.base+Frame(len(a.words)) {
		panic(fmt.Sprintf("pmm: %s outside managed region [%#x, %#x)", f, uint64(a.base), uint64(a.base)+uint64(len(a.words))))
	}
}

// FreeFrames returns the number of frames currently on the free list.
func (a *Allocator) FreeFrames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.free)
}

// TotalFrames returns the number of frames managed by the allocator.
func (a *Allocator) TotalFrames() int {
	return len(a.words)
}
