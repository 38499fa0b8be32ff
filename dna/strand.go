// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dna

import "math/rand/v2"

// Orientation is the strand a slice was read from.
type Orientation uint8

const (
	// Forward means the bases are reported as stored in the reference.
	Forward Orientation = iota
	// Reverse means the bases are the reverse complement of the stored ones.
	Reverse
)

// String returns "+" or "-".
func (o Orientation) String() string {
	if o == Reverse {
		return "-"
	}
	return "+"
}

// Flip returns the opposite orientation.
func (o Orientation) Flip() Orientation {
	if o == Reverse {
		return Forward
	}
	return Reverse
}

// RandomOrientation draws Forward or Reverse with equal probability.
func RandomOrientation(r *rand.Rand) Orientation {
	if r.IntN(2) == 0 {
		return Forward
	}
	return Reverse
}

// Orient returns seq unchanged for Forward and its reverse complement for
// Reverse.
func Orient(seq string, o Orientation) string {
	if o == Reverse {
		return ReverseComp(seq)
	}
	return seq
}
