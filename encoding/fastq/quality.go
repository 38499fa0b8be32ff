package fastq

import (
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
)

// Scale is an ASCII encoding of base qualities.
type Scale uint8

const (
	// Sanger is Phred+33.
	Sanger Scale = iota
	// Solexa is Solexa+64, with Solexa scores converted from Phred.
	Solexa
	// Illumina is Phred+64 (Illumina 1.3 to 1.7).
	Illumina
)

// minSolexa is the lowest score representable on the Solexa scale.
const minSolexa = -5

var scaleNames = map[Scale]string{
	Sanger:   "fastq-sanger",
	Solexa:   "fastq-solexa",
	Illumina: "fastq-illumina",
}

// ParseScale parses a scale name: "fastq-sanger", "fastq-solexa" or
// "fastq-illumina".
func ParseScale(name string) (Scale, error) {
	for s, n := range scaleNames {
		if n == name {
			return s, nil
		}
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown quality scale %q", name))
}

func (s Scale) String() string {
	if n, ok := scaleNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Scale(%d)", s)
}

func (s Scale) offset() int {
	if s == Sanger {
		return 33
	}
	return 64
}

// solexaFromPhred converts a Phred score.  Phred 0 has no Solexa equivalent
// and maps to the floor of the scale.
func solexaFromPhred(q int) int {
	if q <= 0 {
		return minSolexa
	}
	sol := 10 * math.Log10(math.Pow(10, float64(q)/10)-1)
	return max(minSolexa, int(math.Round(sol)))
}

// Encode appends the ASCII encoding of the Phred scores in qual to dst.
func (s Scale) Encode(dst []byte, qual []int) []byte {
	off := s.offset()
	for _, q := range qual {
		if s == Solexa {
			q = solexaFromPhred(q)
		}
		dst = append(dst, byte(min(126, q+off)))
	}
	return dst
}
