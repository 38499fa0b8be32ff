package main

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/readsim/encoding/fasta"
	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index FASTA...",
		Short: "Write the .fai index of uncompressed FASTA files",
		Long: `Write the .fai index of uncompressed FASTA files, next to each file.

Indexed genomes are read lazily by the generate command.  The index format is
the one of "samtools faidx".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return traverse.Each(len(args), func(i int) error {
				return indexFASTA(ctx, args[i])
			})
		},
	}
}

func indexFASTA(ctx context.Context, path string) (err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return errors.E(err, "open", path)
	}
	defer in.Close(ctx) // nolint: errcheck
	idxPath := fasta.IndexPath(path)
	out, err := file.Create(ctx, idxPath)
	if err != nil {
		return errors.E(err, "create", idxPath)
	}
	defer file.CloseAndReport(ctx, out, &err)
	if err = fasta.GenerateIndex(out.Writer(ctx), in.Reader(ctx)); err != nil {
		return errors.E(err, "index", path)
	}
	log.Printf("Wrote %s", idxPath)
	return nil
}
