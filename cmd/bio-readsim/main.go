// bio-readsim generates synthetic sequencing reads from a host genome, a
// virus or vector genome, and chimeric junctions joining the two.
//
//	bio-readsim generate --host hg38.fa --virus hbv.fa --pair -o sample
//	bio-readsim index hg38.fa
//
// The generate command writes sample.R1.fastq.gz and sample.R2.fastq.gz
// (sample.fastq.gz without --pair), a sampling report, and optionally graphs
// of the fragment length distribution and of the read coverage over
// junctions.  Settings not given on the command line are read from the
// --settings file, whose sections and keys are described in
// github.com/grailbio/readsim/config.
package main

func main() {
	Execute()
}
