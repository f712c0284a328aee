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

// SATP is an Sv39 translation-control value: the root table's physical
// page number in bits 0-43, the mode tag in bits 60-63.
type SATP uint64

const (
	satpModeSv39 SATP = 8 << 60
	satpPPNMask  SATP = 1<<44 - 1
)

// Root returns the root-table physical page number encoded in the value.
func (s SATP) Root() pmm.Frame {
	return pmm.Frame(s & satpPPNMask)
}

// TranslationControl abstracts the executing core's address-translation
// state: the control register selecting the active root table and the
// cache of virtual-to-physical translations.
type TranslationControl interface {
	// SATP returns the currently active control value.
	SATP() SATP

	// SetSATP writes a new control value.
	SetSATP(SATP)

	// FlushTLB invalidates every cached translation on this core.
	FlushTLB()
}

// Activate programs the translation control so this address space's
// root table becomes the active one, flushing cached translations. When
// the space is already active, neither the register write nor the flush
// happens. Activation affects only the core behind tc; cross-core
// shootdown is the caller's problem.
func (as *AddressSpace) Activate(tc TranslationControl) {
	root := as.RootFrame()
	if SATP(root)&^satpPPNMask != 0 {
		panic(fmt.Sprintf("vmm: root %s does not fit the satp PPN field", root))
	}
	next := satpModeSv39 | SATP(root)
	if tc.SATP() == next {
		return
	}
	tc.SetSATP(next)
	tc.FlushTLB()
}
