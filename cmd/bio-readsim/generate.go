package main

import (
	"context"
	"time"

	"github.com/grailbio/base/log"
	"github.com/grailbio/readsim/config"
	"github.com/grailbio/readsim/simulate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate FASTQ reads from a host and a virus genome",
		Long: `Generate FASTQ reads from a host and a virus genome.

Reads are drawn from four sources, in this order: the virus genome, the host
genome, a pool of true junctions and a pool of false junctions.  Junctions
join a random slice of the virus genome to a random slice of the host genome.
Every read name records where its bases come from, e.g.

  host|0042|0|1-150=chr3:1200-1350
  true_junction|0007|1|1-60=hbv:30-90|61-150=chr3:1200-1290

Genomes may be gzipped.  Uncompressed genomes with a .fai index (see the
index command) are read lazily instead of being loaded into memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), v)
		},
	}
	f := cmd.Flags()
	f.StringP("host", "H", "", "FASTA file of the host genome")
	f.StringP("virus", "V", "", "FASTA file of the virus or vector genome")
	f.StringP("output", "o", "readsim", "basename of the output files")
	f.StringP("settings", "s", "", "settings file (YAML, TOML or INI)")
	f.BoolP("pair", "p", false, "generate read pairs")
	f.Bool("gzip", true, "gzip the FASTQ files")
	f.Uint64("seed", 0, "random seed; 0 picks one from the clock")
	f.Int("parallelism", 0, "number of chunks of reads generated concurrently; 0 uses every CPU")
	for _, name := range []string{"host", "virus", "output", "settings", "pair", "gzip", "seed", "parallelism"} {
		if err := v.BindPFlag(name, f.Lookup(name)); err != nil {
			log.Panicf("bind %s: %v", name, err)
		}
	}
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("virus")
	config.SetDefaults(v)
	return cmd
}

func runGenerate(ctx context.Context, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
		log.Printf("Using random seed %d", cfg.Seed)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var memStats memStats
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				memStats.update()
			case <-done:
				return
			}
		}
	}()

	start := time.Now()
	if _, err := simulate.Run(ctx, cfg); err != nil {
		return err
	}
	memStats.update()
	log.Printf("MemStats: %s", memStats.String())
	log.Printf("All done in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
