package main

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func writeGenome(t *testing.T, path, name string, r *rand.Rand, n, width int) {
	var b strings.Builder
	b.WriteString(">" + name + "\n")
	for i := 0; i < n; i++ {
		b.WriteByte("ACGT"[r.IntN(4)])
		if (i+1)%width == 0 || i == n-1 {
			b.WriteByte('\n')
		}
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
}

func run(t *testing.T, args ...string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestIndexThenGenerate(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	r := rand.New(rand.NewPCG(1, 2))
	host, virus := filepath.Join(dir, "host.fa"), filepath.Join(dir, "virus.fa")
	writeGenome(t, host, "chr1", r, 5000, 60)
	writeGenome(t, virus, "hbv", r, 1200, 60)

	assert.NoError(t, run(t, "index", host, virus))
	idx, err := os.ReadFile(host + ".fai")
	require.NoError(t, err)
	expect.EQ(t, string(idx), "chr1\t5000\t6\t60\t61\n")

	settings := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(`general:
  read_num: 20
  read_len: 40
  graph: false
junction:
  min_chimeric: 10
sonication:
  sonic_min: 80
  sonic_mode: 120
  sonic_max: 200
`), 0644))
	out := filepath.Join(dir, "sample")
	assert.NoError(t, run(t, "generate", "-H", host, "-V", virus, "-s", settings, "-o", out, "--pair", "--seed", "5", "--gzip=false", "--parallelism", "0"))
	for _, suffix := range []string{".R1.fastq", ".R2.fastq", "_sampling_report.tsv"} {
		data, err := os.ReadFile(out + suffix)
		require.NoError(t, err, suffix)
		expect.True(t, len(data) > 0, suffix)
	}
	r1, err := os.ReadFile(out + ".R1.fastq")
	require.NoError(t, err)
	expect.EQ(t, strings.Count(string(r1), "\n"), 4*20)
}

func TestGenerateErrors(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	r := rand.New(rand.NewPCG(3, 4))
	host := filepath.Join(dir, "host.fa")
	writeGenome(t, host, "chr1", r, 500, 60)

	expect.NotNil(t, run(t, "generate", "-H", host))
	expect.NotNil(t, run(t, "index"))

	settings := filepath.Join(dir, "bad.ini")
	require.NoError(t, os.WriteFile(settings, []byte("[frequency]\nfreq_host = 0.9\n"), 0644))
	err := run(t, "generate", "-H", host, "-V", host, "-s", settings, "--seed", "1")
	require.Error(t, err)
	expect.HasSubstr(t, err.Error(), "sum to")
}
