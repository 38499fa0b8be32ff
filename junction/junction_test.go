package junction_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/readsim/dna"
	"github.com/grailbio/readsim/encoding/fasta"
	"github.com/grailbio/readsim/junction"
	"github.com/grailbio/readsim/reference"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func randomSeq(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.IntN(4)]
	}
	return string(b)
}

func newSet(t testing.TB, name string, r *rand.Rand, lengths ...int) *reference.Set {
	var b strings.Builder
	for i, l := range lengths {
		b.WriteString(">" + name + "_chr" + string(rune('1'+i)) + "\n" + randomSeq(r, l) + "\n")
	}
	fa, err := fasta.New(strings.NewReader(b.String()))
	require.NoError(t, err)
	s, err := reference.New(name, fa)
	require.NoError(t, err)
	return s
}

func build(t testing.TB, count, half, minChimeric int) (*junction.Pool, *reference.Set, *reference.Set) {
	r := rand.New(rand.NewPCG(1, 2))
	host := newSet(t, "host", r, 5000, 3000)
	virus := newSet(t, "virus", r, 3200)
	p, err := junction.Build(r, junction.Opts{
		Name:        "true_junction",
		Count:       count,
		HalfLength:  half,
		MinChimeric: minChimeric,
		Alphabet:    dna.NewAlphabet(false, false),
	}, host, virus)
	require.NoError(t, err)
	return p, host, virus
}

func stored(t testing.TB, s *reference.Set, name string, start, end int, o dna.Orientation) string {
	seq, err := s.Get(name, start, end)
	require.NoError(t, err)
	return dna.Orient(seq, o)
}

func TestBuild(t *testing.T) {
	p, host, virus := build(t, 12, 100, 20)
	expect.EQ(t, p.Name(), "true_junction")
	expect.True(t, p.Chimeric())
	require.Len(t, p.Records(), 12)
	expect.EQ(t, p.Records()[0].ID, "Junction_00")
	expect.EQ(t, p.Records()[11].ID, "Junction_11")
	for _, rec := range p.Records() {
		require.Len(t, rec.Seq, 200)
		expect.EQ(t, rec.Left.Source, "host")
		expect.EQ(t, rec.Right.Source, "virus")
		expect.EQ(t, rec.Left.End-rec.Left.Start, 100)
		expect.EQ(t, rec.Seq[:100], stored(t, host, rec.Left.SeqName, rec.Left.Start, rec.Left.End, rec.Left.Orientation))
		expect.EQ(t, rec.Seq[100:], stored(t, virus, rec.Right.SeqName, rec.Right.Start, rec.Right.End, rec.Right.Orientation))
		got, ok := p.Record(rec.ID)
		expect.True(t, ok)
		expect.EQ(t, got, rec)
	}
	for _, s := range []*reference.Set{host, virus} {
		for _, seq := range s.Sequences() {
			expect.EQ(t, seq.Count(), int64(0), "%s/%s", s.Name(), seq.Name)
		}
	}
}

func TestBuildInvalid(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	host := newSet(t, "host", r, 500)
	virus := newSet(t, "virus", r, 500)
	for _, opts := range []junction.Opts{
		{Name: "j", Count: -1, HalfLength: 50, MinChimeric: 10},
		{Name: "j", Count: 1, HalfLength: 5, MinChimeric: 10},
		{Name: "j", Count: 1, HalfLength: 0, MinChimeric: 0},
	} {
		_, err := junction.Build(r, opts, host, virus)
		expect.True(t, errors.Is(errors.Invalid, err), "%+v: %v", opts, err)
	}
	// Halves longer than the references cannot be drawn.
	_, err := junction.Build(r, junction.Opts{Name: "j", Count: 1, HalfLength: 600, Alphabet: dna.NewAlphabet(false, false)}, host, virus)
	_, ok := err.(*reference.NoValidSliceError)
	expect.True(t, ok, "err=%v", err)
}

func TestBuildAlphabet(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 3))
	// Every other 40-base block of the host is masked.
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString(randomSeq(r, 40) + strings.Repeat("n", 40))
	}
	fa, err := fasta.New(strings.NewReader(">chr1\n" + b.String() + "\n"))
	require.NoError(t, err)
	host, err := reference.New("host", fa)
	require.NoError(t, err)
	virus := newSet(t, "virus", r, 1000)
	p, err := junction.Build(r, junction.Opts{Name: "j", Count: 50, HalfLength: 30, MinChimeric: 5, Alphabet: dna.NewAlphabet(true, false)}, host, virus)
	require.NoError(t, err)
	strict := dna.NewAlphabet(true, false)
	for _, rec := range p.Records() {
		expect.NoError(t, strict.Check(rec.Seq), rec.ID)
	}
}

func TestSampleSlice(t *testing.T) {
	const half, minChimeric = 100, 20
	p, _, _ := build(t, 5, half, minChimeric)
	r := rand.New(rand.NewPCG(8, 8))
	for _, size := range []int{2 * minChimeric, 50, 75, half} {
		for i := 0; i < 500; i++ {
			sl, err := p.SampleSlice(r, size)
			require.NoError(t, err)
			expect.EQ(t, sl.Len(), size)
			expect.True(t, sl.Start <= half-minChimeric, "start %d size %d", sl.Start, size)
			expect.True(t, sl.End >= half+minChimeric, "end %d size %d", sl.End, size)
			rec, ok := p.Record(sl.SeqName)
			require.True(t, ok)
			expect.EQ(t, dna.Orient(sl.Seq, sl.Orientation), rec.Seq[sl.Start:sl.End])
		}
	}
	var total int64
	for _, rec := range p.Records() {
		total += rec.Count()
	}
	expect.EQ(t, total, int64(2000))
	p.ResetCounters()
	for _, rec := range p.Records() {
		expect.EQ(t, rec.Count(), int64(0))
	}

	_, err := p.SampleSlice(r, 2*minChimeric-1)
	expect.True(t, errors.Is(errors.Invalid, err), "err=%v", err)
	_, err = p.SampleSlice(r, half+1)
	expect.True(t, errors.Is(errors.Invalid, err), "err=%v", err)

	empty, _, _ := build(t, 0, half, minChimeric)
	_, err = empty.SampleSlice(r, 50)
	expect.True(t, errors.Is(errors.Invalid, err), "err=%v", err)
}

func TestOrigin(t *testing.T) {
	const half = 100
	p, host, virus := build(t, 20, half, 10)
	sets := map[string]*reference.Set{"host": host, "virus": virus}
	for _, rec := range p.Records() {
		for _, w := range [][2]int{{0, 30}, {70, 100}, {100, 130}, {170, 200}, {90, 110}, {40, 160}, {99, 101}} {
			segs, err := p.Origin(rec.ID, w[0], w[1])
			require.NoError(t, err)
			// Rebuild the window from the reference coordinates.
			var got strings.Builder
			for i, seg := range segs {
				sd, set := rec.Left, host
				if i == 1 || w[0] >= half {
					sd, set = rec.Right, sets[rec.Right.Source]
				}
				expect.EQ(t, seg.SeqName, sd.SeqName)
				got.WriteString(stored(t, set, seg.SeqName, seg.Start, seg.End, sd.Orientation))
			}
			expect.EQ(t, got.String(), rec.Seq[w[0]:w[1]], "%s %v", rec.ID, w)
			expect.EQ(t, segs[0].ReadStart, 1)
			expect.EQ(t, segs[len(segs)-1].ReadEnd, w[1]-w[0])
			if w[0] < half && w[1] > half {
				require.Len(t, segs, 2)
				expect.EQ(t, segs[0].ReadEnd, half-w[0])
				expect.EQ(t, segs[1].ReadStart, half-w[0]+1)
			} else {
				require.Len(t, segs, 1)
			}
		}
	}

	rec := p.Records()[0]
	segs, err := p.Origin(rec.ID, 0, 10)
	require.NoError(t, err)
	if rec.Left.Orientation == dna.Forward {
		expect.EQ(t, segs[0].Start, rec.Left.Start)
		expect.EQ(t, segs[0].End, rec.Left.Start+10)
	} else {
		expect.EQ(t, segs[0].Start, rec.Left.End-10)
		expect.EQ(t, segs[0].End, rec.Left.End)
	}

	_, err = p.Origin("Junction_99", 0, 10)
	expect.True(t, errors.Is(errors.NotExist, err))
	_, err = p.Origin(rec.ID, 150, 201)
	expect.True(t, errors.Is(errors.Invalid, err))
}
