package simulate

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/grailbio/readsim/dna"
	"github.com/grailbio/readsim/junction"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

// lines splits a report, dropping trailing field separators.
func lines(s string) []string {
	out := strings.Split(s, "\n")
	for i := range out {
		out[i] = strings.TrimRight(out[i], "\t")
	}
	return out
}

func TestWriteReport(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 9))
	host := newSet(t, "host", r, 120, 80)
	virus := newSet(t, "virus", r, 60)
	pool, err := junction.Build(r, junction.Opts{
		Name:        "false_junction",
		Count:       2,
		HalfLength:  20,
		MinChimeric: 5,
		Alphabet:    dna.NewAlphabet(false, true),
	}, virus, host)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := host.SampleSlice(r, 10)
		require.NoError(t, err)
	}
	_, err = pool.SampleSlice(r, 20)
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, WriteReport(&buf, []Task{{Source: host, Count: 3}, {Source: pool, Count: 1}}))
	got := lines(buf.String())
	require.Len(t, got, 15)
	expect.EQ(t, got[:4], []string{
		"Source = host",
		"Total number of read = 3",
		"Number of sequences = 2",
		"chr\tlength\tnb_samp",
	})
	expect.True(t, strings.HasPrefix(got[4], "chr1\t120\t"))
	expect.True(t, strings.HasPrefix(got[5], "chr2\t80\t"))
	expect.EQ(t, got[6], "")
	expect.EQ(t, got[7:11], []string{
		"Source = false_junction",
		"Total number of read = 1",
		"Number of sequences = 2",
		"junction_id\tref1_source\tref1_chr\tref1_loc\tref1_orientation\tref2_source\tref2_chr\tref2_loc\tref2_orientation\tnb_samp",
	})
	var sampled int
	for _, l := range got[11:13] {
		f := strings.Split(l, "\t")
		require.Len(t, f, 10)
		expect.True(t, strings.HasPrefix(f[0], "Junction_"))
		expect.EQ(t, f[1], "virus")
		expect.EQ(t, f[5], "host")
		expect.Regexp(t, f[3], `^\d+-\d+$`)
		expect.Regexp(t, f[4], `^[+-]$`)
		if f[9] == "1" {
			sampled++
		}
	}
	expect.EQ(t, sampled, 1)
	expect.EQ(t, got[13:], []string{"", ""})

	var hostTotal int64
	for _, s := range host.Sequences() {
		hostTotal += s.Count()
	}
	expect.EQ(t, hostTotal, int64(3))
}
