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
	"errors"
	"testing"

	"github.com/osmium-kernel/osmium/pkg/mem/pmm"
)

// Frames for table nodes and backing memory live at 2 GiB, well away
// from the identity-mapped test ranges.
const testPoolBase pmm.Frame = 0x80000

func newTestSpace(t *testing.T, frames int) (*AddressSpace, *pmm.Allocator) {
	t.Helper()
	allocator := pmm.NewAllocator(testPoolBase, frames)
	as, err := New(allocator)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return as, allocator
}

// checkTranslation asserts that every page of r translates to the
// expected physical page with the expected leaf flags.
func checkTranslation(t *testing.T, as *AddressSpace, r PageRange, physFor func(Page) pmm.Frame, flags EntryFlags) {
	t.Helper()
	for page := r.Start; page < r.End; page++ {
		pa, got, err := as.Translate(page.Address())
		if err != nil {
			t.Errorf("Translate(%s): %v", page, err)
			continue
		}
		if want := physFor(page).Address(); pa != want {
			t.Errorf("Translate(%s) = %s, want %s", page, pa, want)
		}
		if want := flags | FlagValid; got != want {
			t.Errorf("Translate(%s) flags = %#x, want %#x", page, uint64(got), uint64(want))
		}
	}
}

func identity(p Page) pmm.Frame {
	return pmm.Frame(p)
}

func TestMapDisjointRanges(t *testing.T) {
	// Two disjoint ranges in different subtrees keep their own physical
	// pages and flags regardless of mapping order.
	rangeA := PageRange{Start: 0x100, End: 0x104}
	rangeB := PageRange{Start: 1 << 18, End: 1<<18 + 2}

	for _, order := range []string{"linear first", "framed first"} {
		t.Run(order, func(t *testing.T) {
			as, _ := newTestSpace(t, 64)
			defer as.Release()

			mapA := func() {
				if err := as.MapLinear(rangeA, FlagRead|FlagExec); err != nil {
					t.Fatalf("MapLinear(%s): %v", rangeA, err)
				}
			}
			mapB := func() {
				if err := as.MapAlloc(rangeB, FlagRead|FlagWrite); err != nil {
					t.Fatalf("MapAlloc(%s): %v", rangeB, err)
				}
			}
			if order == "linear first" {
				mapA()
				mapB()
			} else {
				mapB()
				mapA()
			}

			checkTranslation(t, as, rangeA, identity, FlagRead|FlagExec)

			segs := as.Segments()
			var framed *Segment
			for i := range segs {
				if segs[i].Kind == SegmentFramed {
					framed = &segs[i]
				}
			}
			if framed == nil {
				t.Fatal("no framed segment recorded")
			}
			backing := framed.Frames()
			checkTranslation(t, as, rangeB, func(p Page) pmm.Frame {
				return backing[p-rangeB.Start].Frame()
			}, FlagRead|FlagWrite)
		})
	}
}

func TestMapConflict(t *testing.T) {
	as, allocator := newTestSpace(t, 64)
	defer as.Release()

	page := Page(0x100)
	r := PageRange{Start: page, End: page + 1}
	if err := as.MapLinear(r, FlagRead|FlagExec); err != nil {
		t.Fatalf("MapLinear: %v", err)
	}
	freeBefore := allocator.FreeFrames()

	if err := as.MapLinear(r, FlagRead); !errors.Is(err, ErrAlreadyMapped) {
		t.Fatalf("second MapLinear: got %v, want ErrAlreadyMapped", err)
	}
	if err := as.MapAlloc(r, FlagRead|FlagWrite); !errors.Is(err, ErrAlreadyMapped) {
		t.Fatalf("MapAlloc over mapped page: got %v, want ErrAlreadyMapped", err)
	}

	// The first mapping is untouched and the aborted MapAlloc returned
	// its would-be backing frame.
	checkTranslation(t, as, r, identity, FlagRead|FlagExec)
	if got := allocator.FreeFrames(); got != freeBefore {
		t.Errorf("free frames = %d, want %d", got, freeBefore)
	}
	if got := len(as.Segments()); got != 1 {
		t.Errorf("segments = %d, want 1", got)
	}
}

func TestMapLinearIdentity(t *testing.T) {
	as, _ := newTestSpace(t, 64)
	defer as.Release()

	r := RangeFromAddresses(0x200000, 0x208000)
	if err := as.MapLinear(r, FlagRead|FlagWrite); err != nil {
		t.Fatalf("MapLinear: %v", err)
	}
	checkTranslation(t, as, r, identity, FlagRead|FlagWrite)

	// Offsets within a page are preserved.
	pa, _, err := as.Translate(0x200abc)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if pa != 0x200abc {
		t.Errorf("Translate(0x200abc) = %s, want 0x200abc", pa)
	}
}

func TestMapAllocDistinctFrames(t *testing.T) {
	const pages = 5
	as, allocator := newTestSpace(t, 64)

	total := allocator.TotalFrames()
	r := PageRange{Start: 0x100, End: 0x100 + pages}
	if err := as.MapAlloc(r, FlagRead|FlagWrite); err != nil {
		t.Fatalf("MapAlloc: %v", err)
	}

	seg := as.Segments()[0]
	backing := seg.Frames()
	if len(backing) != pages {
		t.Fatalf("backing frames = %d, want %d", len(backing), pages)
	}
	seen := make(map[pmm.Frame]bool)
	for _, tracker := range backing {
		if seen[tracker.Frame()] {
			t.Errorf("%s handed out twice", tracker.Frame())
		}
		seen[tracker.Frame()] = true
	}

	// Backing frames plus table nodes stay allocated while the segment
	// and the space exist, and all come back on Release.
	if got, want := allocator.FreeFrames(), total-pages-len(as.TableFrames()); got != want {
		t.Errorf("free frames = %d, want %d", got, want)
	}
	as.Release()
	if got := allocator.FreeFrames(); got != total {
		t.Errorf("free frames after Release = %d, want %d", got, total)
	}
}

func TestMapAllocExhausted(t *testing.T) {
	// A pool of exactly one frame: the root consumes it, so mapping a
	// single page has nothing left for interior nodes or backing.
	allocator := pmm.NewAllocator(testPoolBase, 1)
	as, err := New(allocator)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer as.Release()

	r := PageRange{Start: 0x100, End: 0x101}
	if err := as.MapAlloc(r, FlagRead|FlagWrite); !errors.Is(err, pmm.ErrFramesExhausted) {
		t.Fatalf("MapAlloc: got %v, want ErrFramesExhausted", err)
	}
	if err := as.MapLinear(r, FlagRead); !errors.Is(err, pmm.ErrFramesExhausted) {
		t.Fatalf("MapLinear: got %v, want ErrFramesExhausted", err)
	}
	if got := len(as.Segments()); got != 0 {
		t.Errorf("segments = %d, want 0", got)
	}
}

func TestFailedMapKeepsEarlierPages(t *testing.T) {
	// A multi-page call that fails midway leaves the pages it already
	// mapped in place, and interior nodes created on the way to the
	// failing page stay linked and allocated.
	as, allocator := newTestSpace(t, 64)
	defer as.Release()

	// Page 0x200 sits in the second leaf table of the first subtree.
	premapped := PageRange{Start: 0x200, End: 0x201}
	if err := as.MapLinear(premapped, FlagRead); err != nil {
		t.Fatalf("MapLinear(%s): %v", premapped, err)
	}
	tablesBefore := len(as.TableFrames())
	freeBefore := allocator.FreeFrames()

	// Pages 0x1fe-0x1ff need a fresh leaf table; page 0x200 conflicts.
	r := PageRange{Start: 0x1fe, End: 0x202}
	if err := as.MapLinear(r, FlagRead|FlagWrite); !errors.Is(err, ErrAlreadyMapped) {
		t.Fatalf("MapLinear(%s): got %v, want ErrAlreadyMapped", r, err)
	}

	// No rollback: the two pages mapped before the conflict translate,
	// the page after it does not, and no segment covers any of them.
	checkTranslation(t, as, PageRange{Start: 0x1fe, End: 0x200}, identity, FlagRead|FlagWrite)
	if _, _, err := as.Translate(Page(0x201).Address()); !errors.Is(err, ErrInvalidMapping) {
		t.Errorf("Translate(page 0x201): got %v, want ErrInvalidMapping", err)
	}
	if got := len(as.Segments()); got != 1 {
		t.Errorf("segments = %d, want 1", got)
	}

	// The leaf table created for 0x1fe-0x1ff remains owned.
	if got := len(as.TableFrames()); got != tablesBefore+1 {
		t.Errorf("table nodes = %d, want %d", got, tablesBefore+1)
	}
	if got := allocator.FreeFrames(); got != freeBefore-1 {
		t.Errorf("free frames = %d, want %d", got, freeBefore-1)
	}
}

func TestRootIsFirstAndStable(t *testing.T) {
	as, _ := newTestSpace(t, 64)
	defer as.Release()

	root := as.RootFrame()
	if frames := as.TableFrames(); frames[0] != root {
		t.Errorf("TableFrames[0] = %s, want root %s", frames[0], root)
	}
	if err := as.MapLinear(PageRange{Start: 0x100, End: 0x110}, FlagRead); err != nil {
		t.Fatalf("MapLinear: %v", err)
	}
	if as.RootFrame() != root {
		t.Error("root table changed across mapping calls")
	}
}
