// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dna

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

const (
	// Unambiguous is the strict nucleotide alphabet.
	Unambiguous = "ACGT"
	// Ambiguous is the full IUPAC nucleotide alphabet.
	Ambiguous = "GATCRYWSMKHBVDN"
)

// Alphabet is the set of bytes a sampled read may contain.  The zero value
// accepts nothing.
type Alphabet struct {
	letters string
	allowed [256]bool
}

// NewAlphabet returns the alphabet selected by the two flags.  ambiguous admits
// IUPAC ambiguity codes (including N); repeats admits the lowercase
// soft-masked form of every admitted letter.
func NewAlphabet(ambiguous, repeats bool) Alphabet {
	letters := Unambiguous
	if ambiguous {
		letters = Ambiguous
	}
	if repeats {
		letters += strings.ToLower(letters)
	}
	return ParseAlphabet(letters)
}

// ParseAlphabet builds an alphabet from an explicit list of letters.
func ParseAlphabet(letters string) Alphabet {
	a := Alphabet{letters: letters}
	for i := 0; i < len(letters); i++ {
		a.allowed[letters[i]] = true
	}
	return a
}

// Check returns an error naming the first byte of seq that is not in the
// alphabet.
func (a *Alphabet) Check(seq string) error {
	for i := 0; i < len(seq); i++ {
		if !a.allowed[seq[i]] {
			return errors.E(errors.Invalid, fmt.Sprintf("base %q at position %d not in alphabet %s", seq[i], i, a.letters))
		}
	}
	return nil
}

// String returns the letters of the alphabet.
func (a Alphabet) String() string { return a.letters }
