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

package vmm

import (
	"fmt"

	"github.com/osmium-kernel/osmium/pkg/mem/pmm"
)

// SegmentKind distinguishes how a segment's physical backing was chosen.
type SegmentKind uint8

const (
	// SegmentLinear marks an identity mapping: physical page number
	// equals virtual page number by construction, no frames are owned.
	SegmentLinear SegmentKind = iota

	// SegmentFramed marks a mapping backed by independently allocated
	// frames, one shared handle per page in ascending page order.
	SegmentFramed
)

// String implements fmt.Stringer.String.
func (k SegmentKind) String() string {
	switch k {
	case SegmentLinear:
		return "linear"
	case SegmentFramed:
		return "framed"
	default:
		return fmt.Sprintf("SegmentKind(%d)", uint8(k))
	}
}

// Segment describes one contiguous mapped virtual range and its mapping
// policy. Segments recorded in one address space never overlap.
type Segment struct {
	Kind  SegmentKind
	Range PageRange
	Flags EntryFlags

	// frames backs a framed segment, one tracker per page ascending.
	// Empty for linear segments.
	frames []*pmm.FrameTracker
}

// Frames returns the segment's backing frame handles. The returned
// slice must not be mutated.
func (s *Segment) Frames() []*pmm.FrameTracker {
	return s.frames
}

// String implements fmt.Stringer.String.
func (s *Segment) String() string {
	return fmt.Sprintf("%s segment %s %s", s.Kind, s.Range, s.Flags)
}
