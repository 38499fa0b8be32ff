// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dna

// complementTable maps every IUPAC nucleotide code to its complement.  Case is
// preserved so that soft-masked repeats stay lowercase after reverse
// complementation.  Bytes outside the IUPAC alphabet map to 'N'.
var complementTable [256]byte

func init() {
	for i := range complementTable {
		complementTable[i] = 'N'
	}
	pairs := []string{"AT", "CG", "RY", "KM", "SS", "WW", "BV", "DH", "NN"}
	for _, p := range pairs {
		a, b := p[0], p[1]
		complementTable[a], complementTable[b] = b, a
		complementTable[a|0x20], complementTable[b|0x20] = b|0x20, a|0x20
	}
}

// ReverseCompInplace reverse-complements seq.
func ReverseCompInplace(seq []byte) {
	n := len(seq)
	half := n >> 1
	for i, j := 0, n-1; i != half; i, j = i+1, j-1 {
		seq[i], seq[j] = complementTable[seq[j]], complementTable[seq[i]]
	}
	if n&1 == 1 {
		seq[half] = complementTable[seq[half]]
	}
}

// ReverseComp returns the reverse complement of seq.
func ReverseComp(seq string) string {
	b := []byte(seq)
	ReverseCompInplace(b)
	return string(b)
}
