// Package simulate generates synthetic sequencing reads from a set of
// sources, writes them as FASTQ and reports on what was sampled.
package simulate

import (
	"context"
	"math/rand/v2"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/readsim/reference"
	"github.com/grailbio/readsim/sampler"
)

// DefaultChunkSize is the number of fragments generated from one random
// stream.
const DefaultChunkSize = 4096

// Opts controls read generation.
type Opts struct {
	// Parallelism is the number of chunks generated concurrently.
	Parallelism int
	// Seed determines every random draw of a run.
	Seed uint64
	// ChunkSize is the number of fragments per random stream.  Output only
	// depends on Seed and ChunkSize, never on Parallelism.
	ChunkSize int
}

// DefaultOpts are the generation defaults.
var DefaultOpts = Opts{
	Parallelism: 1,
	ChunkSize:   DefaultChunkSize,
}

// Task asks for Count fragments from Source.
type Task struct {
	Source reference.Source
	Count  int
}

// Sink consumes the reads of each fragment, in task and index order.
type Sink interface {
	Write(frag []*sampler.Read) error
}

// Simulator draws fragments with a Sampler and finishes them with an
// Assembler.
type Simulator struct {
	opts      Opts
	sampler   sampler.Sampler
	assembler *Assembler
}

// NewSimulator returns a simulator.  Zero fields of opts take their value from
// DefaultOpts.
func NewSimulator(opts Opts, s sampler.Sampler, a *Assembler) *Simulator {
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultOpts.Parallelism
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultOpts.ChunkSize
	}
	return &Simulator{opts: opts, sampler: s, assembler: a}
}

// chunkRand returns the random stream of one chunk of one task.
func chunkRand(seed uint64, task, chunk int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(task)<<32|uint64(chunk)))
}

// poolRand returns the random stream used to build junction pool i.
func poolRand(seed uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 1<<63|uint64(i)))
}

type chunk struct {
	frags [][]*sampler.Read
	stats Stats
}

// Run generates the fragments of every task and hands them to sink.  Chunks
// of one task are generated in parallel, one batch of Parallelism chunks at a
// time, and written in order.
func (s *Simulator) Run(ctx context.Context, tasks []Task, sink Sink) (Stats, error) {
	total := newStats()
	for ti, task := range tasks {
		if task.Count == 0 {
			continue
		}
		name := task.Source.Name()
		log.Printf("Writing %d fragment(s) from %s", task.Count, name)
		width := IDWidth(task.Count)
		nChunks := (task.Count + s.opts.ChunkSize - 1) / s.opts.ChunkSize
		for first := 0; first < nChunks; first += s.opts.Parallelism {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			batch := make([]chunk, min(s.opts.Parallelism, nChunks-first))
			err := traverse.Each(len(batch), func(i int) error {
				c := first + i
				lo := c * s.opts.ChunkSize
				hi := min(task.Count, lo+s.opts.ChunkSize)
				r := chunkRand(s.opts.Seed, ti, c)
				out := chunk{frags: make([][]*sampler.Read, 0, hi-lo), stats: newStats()}
				for idx := lo; idx < hi; idx++ {
					frag, err := s.sampler.Sample(r, task.Source)
					if err != nil {
						return err
					}
					if err := s.assembler.Assemble(r, frag, idx, width); err != nil {
						return err
					}
					out.stats.add(frag)
					out.frags = append(out.frags, frag)
				}
				batch[i] = out
				if log.At(log.Debug) {
					log.Debug.Printf("%s: chunk %d done, fragments [%d,%d)", name, c, lo, hi)
				}
				return nil
			})
			if err != nil {
				return total, err
			}
			for _, c := range batch {
				for _, frag := range c.frags {
					if err := sink.Write(frag); err != nil {
						return total, err
					}
				}
				total.Merge(c.stats)
			}
		}
	}
	return total, nil
}
