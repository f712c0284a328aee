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

// Package vmm implements Sv39 virtual memory mapping: per-context
// address spaces built from 3-level radix page tables, linear and
// frame-backed segments, and activation of a space on the translation
// hardware.
//
// An AddressSpace is not internally synchronized. The caller must
// ensure that at most one goroutine mutates a given address space at a
// time; the frame allocator underneath is safe to share between
// concurrently mutated spaces.
package vmm

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	// ErrAlreadyMapped is returned when the targeted virtual page
	// already has a non-empty terminal entry.
	ErrAlreadyMapped = errors.New("vmm: virtual page is already mapped")

	// ErrInvalidMapping is returned by Translate for a virtual address
	// with no leaf entry.
	ErrInvalidMapping = errors.New("vmm: virtual address is not mapped")
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the package logger.
func SetLogger(l logrus.FieldLogger) {
	logger = l
}
