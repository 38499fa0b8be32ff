package simulate

import (
	"context"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/readsim/config"
	"github.com/grailbio/readsim/dna"
	"github.com/grailbio/readsim/encoding/fasta"
	"github.com/grailbio/readsim/encoding/fastq"
	"github.com/grailbio/readsim/junction"
	"github.com/grailbio/readsim/mutation"
	"github.com/grailbio/readsim/quality"
	"github.com/grailbio/readsim/reference"
	"github.com/grailbio/readsim/sampler"
	"github.com/grailbio/readsim/sonication"
)

// Source names, in the order reads are generated.
const (
	VirusName         = "virus"
	HostName          = "host"
	TrueJunctionName  = "true_junction"
	FalseJunctionName = "false_junction"
)

// Run performs the simulation described by cfg, which must have passed
// Validate.  It writes the FASTQ files and, as requested, the sampling
// report and graphs.
func Run(ctx context.Context, cfg *config.Config) (_ *Stats, err error) {
	log.Printf("Simulating %s", cfg)
	var (
		e     errors.Once
		srcs  = map[string]*reference.Set{}
		files []*fasta.File
	)
	defer func() {
		for _, fa := range files {
			if closeErr := fa.Close(ctx); err == nil && closeErr != nil {
				err = errors.E(closeErr, "close", fa.Path)
			}
		}
	}()
	for _, g := range []struct{ name, path string }{{VirusName, cfg.Virus}, {HostName, cfg.Host}} {
		fa, err := fasta.Open(ctx, g.path)
		if err != nil {
			return nil, err
		}
		files = append(files, fa)
		set, err := reference.New(g.name, fa)
		if err != nil {
			return nil, errors.E(err, g.path)
		}
		log.Printf("%s: %d sequence(s), %d bases from %s", g.name, len(set.Sequences()), set.TotalLength(), g.path)
		srcs[g.name] = set
	}
	virus, host := srcs[VirusName], srcs[HostName]

	alphabet := dna.NewAlphabet(cfg.General.Ambiguous, cfg.General.Repeats)
	counts := cfg.ReadCounts()
	half := cfg.JunctionHalfLength()
	pools := make([]*junction.Pool, 2)
	for i, j := range []struct {
		name string
		n    int
		samp float64
	}{
		{TrueJunctionName, counts.TJun, cfg.Junction.SampTJun},
		{FalseJunctionName, counts.FJun, cfg.Junction.SampFJun},
	} {
		pool, err := junction.Build(poolRand(cfg.Seed, i), junction.Opts{
			Name:        j.name,
			Count:       config.UniqueJunctions(j.n, j.samp),
			HalfLength:  half,
			MinChimeric: cfg.Junction.MinChimeric,
			Alphabet:    alphabet,
		}, virus, host)
		if err != nil {
			return nil, err
		}
		log.Printf("%s: %d junction(s) of %d bases", j.name, len(pool.Records()), 2*half)
		pools[i] = pool
	}

	mut, err := mutation.New(cfg.General.MutFreq)
	if err != nil {
		return nil, err
	}
	opts := sampler.Opts{ReadLength: cfg.General.ReadLen, Alphabet: alphabet, Mutation: mut}
	var (
		smp   sampler.Sampler
		sonic *sonication.Model
	)
	if cfg.Pair {
		s := cfg.Sonication
		if sonic, err = sonication.New(s.Min, s.Mode, s.Max, s.Certainty); err != nil {
			return nil, err
		}
		smp, err = sampler.NewPaired(opts, sonic)
	} else {
		smp, err = sampler.NewSingle(opts)
	}
	if err != nil {
		return nil, err
	}
	tier, err := quality.ParseTier(cfg.Quality.Range)
	if err != nil {
		return nil, err
	}
	qual, err := quality.New(cfg.General.ReadLen, tier)
	if err != nil {
		return nil, err
	}
	scale, err := fastq.ParseScale(cfg.Quality.Scale)
	if err != nil {
		return nil, err
	}

	tasks := []Task{
		{Source: virus, Count: counts.Virus},
		{Source: host, Count: counts.Host},
		{Source: pools[0], Count: counts.TJun},
		{Source: pools[1], Count: counts.FJun},
	}
	out, err := CreateFASTQOutput(ctx, cfg.Output, cfg.Pair, cfg.Gzip, scale)
	if err != nil {
		return nil, err
	}
	sim := NewSimulator(Opts{Parallelism: cfg.Parallelism, Seed: cfg.Seed}, smp, NewAssembler(qual))
	st, err := sim.Run(ctx, tasks, out)
	if closeErr := out.Close(ctx); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}
	log.Printf("Wrote %v", out.Paths())

	if cfg.General.Report {
		e.Set(saveReport(ctx, ReportPath(cfg.Output), tasks))
	}
	if cfg.General.Graph {
		e.Set(saveGraphs(ctx, cfg.Output, &st, sonic))
	}
	LogStats(&st)
	return &st, e.Err()
}

func saveReport(ctx context.Context, path string, tasks []Task) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	if err = WriteReport(out.Writer(ctx), tasks); err != nil {
		return errors.E(err, "write", path)
	}
	log.Printf("Wrote sampling report %s", path)
	return nil
}

func saveGraphs(ctx context.Context, basename string, st *Stats, sonic *sonication.Model) error {
	p, err := FragmentLengthPlot(st, sonic)
	if err != nil {
		return err
	}
	if err := SaveSVG(ctx, DistributionPlotPath(basename), p); err != nil {
		return err
	}
	if len(st.JunctionCoverage) == 0 {
		log.Printf("No junction read, skipping the coverage graph")
		return nil
	}
	if p, err = JunctionCoveragePlot(st.JunctionCoverage); err != nil {
		return err
	}
	return SaveSVG(ctx, CoveragePlotPath(basename), p)
}

// LogStats logs a summary of a run.
func LogStats(st *Stats) {
	names := make([]string, 0, len(st.Fragments))
	for name := range st.Fragments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Printf("%s: %d fragment(s)", name, st.Fragments[name])
	}
	mean, sd := st.FragmentLengthMoments()
	log.Printf("Reads: %d, mutations: %d, fragment length: %.1f +- %.1f", st.Reads, st.Mutations, mean, sd)
}
