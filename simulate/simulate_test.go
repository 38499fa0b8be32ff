package simulate

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/readsim/dna"
	"github.com/grailbio/readsim/encoding/fasta"
	"github.com/grailbio/readsim/junction"
	"github.com/grailbio/readsim/mutation"
	"github.com/grailbio/readsim/quality"
	"github.com/grailbio/readsim/reference"
	"github.com/grailbio/readsim/sampler"
	"github.com/grailbio/testutil/assert"
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

func fastaText(r *rand.Rand, prefix string, lengths ...int) string {
	var b strings.Builder
	for i, l := range lengths {
		b.WriteString(">" + prefix + string(rune('1'+i)) + "\n" + randomSeq(r, l) + "\n")
	}
	return b.String()
}

func newSet(t testing.TB, name string, r *rand.Rand, lengths ...int) *reference.Set {
	fa, err := fasta.New(strings.NewReader(fastaText(r, "chr", lengths...)))
	require.NoError(t, err)
	s, err := reference.New(name, fa)
	require.NoError(t, err)
	return s
}

type memSink struct {
	frags [][]*sampler.Read
}

func (m *memSink) Write(frag []*sampler.Read) error {
	m.frags = append(m.frags, frag)
	return nil
}

func newSimulator(t testing.TB, opts Opts, readLen int) *Simulator {
	mut, err := mutation.New(0.01)
	require.NoError(t, err)
	smp, err := sampler.NewSingle(sampler.Opts{
		ReadLength: readLen,
		Alphabet:   dna.NewAlphabet(false, true),
		Mutation:   mut,
	})
	require.NoError(t, err)
	q, err := quality.New(readLen, quality.Good)
	require.NoError(t, err)
	return NewSimulator(opts, smp, NewAssembler(q))
}

func TestRunIndependentOfParallelism(t *testing.T) {
	set := newSet(t, "host", rand.New(rand.NewPCG(1, 1)), 400, 600)
	tasks := []Task{{Source: set, Count: 25}}
	var sinks [2]memSink
	for i, par := range []int{1, 4} {
		sim := newSimulator(t, Opts{Parallelism: par, Seed: 7, ChunkSize: 3}, 30)
		st, err := sim.Run(context.Background(), tasks, &sinks[i])
		assert.NoError(t, err)
		expect.EQ(t, st.Reads, int64(25))
		expect.EQ(t, st.Fragments["host"], int64(25))
		expect.EQ(t, st.FragmentLengths[30], int64(25))
	}
	require.Len(t, sinks[0].frags, 25)
	require.Len(t, sinks[1].frags, 25)
	for i := range sinks[0].frags {
		a, b := sinks[0].frags[i][0], sinks[1].frags[i][0]
		expect.EQ(t, a.ID, b.ID)
		expect.EQ(t, a.Seq, b.Seq)
		expect.EQ(t, a.Qual, b.Qual)
	}
	expect.True(t, strings.HasPrefix(sinks[0].frags[0][0].ID, "host|00|0|1-30=chr"), sinks[0].frags[0][0].ID)
	expect.True(t, strings.HasPrefix(sinks[0].frags[24][0].ID, "host|24|0|1-30=chr"), sinks[0].frags[24][0].ID)
}

func TestRunSeedChangesOutput(t *testing.T) {
	set := newSet(t, "host", rand.New(rand.NewPCG(1, 1)), 1000)
	tasks := []Task{{Source: set, Count: 10}}
	var a, b memSink
	_, err := newSimulator(t, Opts{Seed: 1}, 50).Run(context.Background(), tasks, &a)
	assert.NoError(t, err)
	_, err = newSimulator(t, Opts{Seed: 2}, 50).Run(context.Background(), tasks, &b)
	assert.NoError(t, err)
	same := 0
	for i := range a.frags {
		if a.frags[i][0].Seq == b.frags[i][0].Seq {
			same++
		}
	}
	expect.True(t, same < 10)
}

func TestRunCanceled(t *testing.T) {
	set := newSet(t, "host", rand.New(rand.NewPCG(1, 1)), 1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var sink memSink
	_, err := newSimulator(t, Opts{}, 50).Run(ctx, []Task{{Source: set, Count: 10}}, &sink)
	expect.EQ(t, err, context.Canceled)
	expect.EQ(t, len(sink.frags), 0)
}

func TestRunSourceTooShort(t *testing.T) {
	set := newSet(t, "host", rand.New(rand.NewPCG(1, 1)), 20)
	var sink memSink
	_, err := newSimulator(t, Opts{}, 50).Run(context.Background(), []Task{{Source: set, Count: 1}}, &sink)
	require.Error(t, err)
	expect.HasSubstr(t, err.Error(), "no valid slice of 50 bases")
}

func TestAssemble(t *testing.T) {
	set := newSet(t, "virus", rand.New(rand.NewPCG(3, 3)), 200)
	q, err := quality.New(20, quality.VeryGood)
	require.NoError(t, err)
	a := NewAssembler(q)
	rd := &sampler.Read{Seq: strings.Repeat("A", 20), Source: set, SeqName: "chr1", Start: 10, End: 30}
	r := rand.New(rand.NewPCG(1, 2))
	assert.NoError(t, a.Assemble(r, []*sampler.Read{rd}, 7, IDWidth(1000)))
	expect.EQ(t, rd.ID, "virus|0007|0|1-20=chr1:10-30")
	expect.EQ(t, len(rd.Qual), 20)

	rd.Seq = "ACGT"
	expect.True(t, errors.Is(errors.Invalid, a.Assemble(r, []*sampler.Read{rd}, 0, 1)))
}

func TestIDWidth(t *testing.T) {
	expect.EQ(t, IDWidth(1), 1)
	expect.EQ(t, IDWidth(9), 1)
	expect.EQ(t, IDWidth(10), 2)
	expect.EQ(t, IDWidth(2500), 4)
}

func TestJunctionCoverage(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 5))
	host := newSet(t, "host", r, 500)
	virus := newSet(t, "virus", r, 300)
	pool, err := junction.Build(r, junction.Opts{
		Name:        "true_junction",
		Count:       4,
		HalfLength:  40,
		MinChimeric: 5,
		Alphabet:    dna.NewAlphabet(false, true),
	}, virus, host)
	require.NoError(t, err)

	var sink memSink
	st, err := newSimulator(t, Opts{Seed: 3}, 30).Run(context.Background(), []Task{{Source: pool, Count: 50}}, &sink)
	assert.NoError(t, err)
	require.Len(t, st.JunctionCoverage, 80)
	var total int64
	for i, c := range st.JunctionCoverage {
		total += c
		if i < 40-30+5 || i >= 40+30-5 {
			expect.EQ(t, c, int64(0))
		}
	}
	expect.EQ(t, total, int64(50*30))
	// Every read crosses the breakpoint.
	expect.EQ(t, st.JunctionCoverage[39], int64(50))
	expect.EQ(t, st.JunctionCoverage[40], int64(50))
	for _, frag := range sink.frags {
		expect.True(t, strings.HasPrefix(frag[0].ID, "true_junction|"), frag[0].ID)
		expect.EQ(t, strings.Count(frag[0].ID, "|"), 4)
	}
}

func TestStatsMerge(t *testing.T) {
	a := newStats()
	a.Fragments["host"] = 3
	a.FragmentLengths[100] = 3
	a.Reads = 3
	a.JunctionCoverage = []int64{1, 2}
	b := newStats()
	b.Fragments["host"] = 1
	b.Fragments["virus"] = 2
	b.FragmentLengths[100] = 1
	b.FragmentLengths[300] = 2
	b.Reads = 3
	b.Mutations = 4
	b.JunctionCoverage = []int64{1, 1, 1, 1}
	a.Merge(b)
	expect.EQ(t, a.Fragments, map[string]int64{"host": 4, "virus": 2})
	expect.EQ(t, a.Reads, int64(6))
	expect.EQ(t, a.Mutations, int64(4))
	expect.EQ(t, a.JunctionCoverage, []int64{2, 3, 1, 1})

	lengths, counts := a.FragmentLengthHistogram()
	expect.EQ(t, lengths, []float64{100, 300})
	expect.EQ(t, counts, []float64{4, 2})
	mean, _ := a.FragmentLengthMoments()
	expect.True(t, mean > 166 && mean < 167)

	var empty Stats
	mean, sd := empty.FragmentLengthMoments()
	expect.EQ(t, mean, 0.0)
	expect.EQ(t, sd, 0.0)
}
